package config

import (
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/table"
)

func TestParseSignTable(t *testing.T) {
	tests := []struct {
		raw  string
		want map[string]common.Sign
	}{
		{"Activation:0,Inhibition:1", map[string]common.Sign{"Activation": common.SignPositive, "Inhibition": common.SignNegative}},
		{" Activation : 0 , ", map[string]common.Sign{"Activation": common.SignPositive}},
		{"Activation:2,Inhibition:x,:1,Gef", map[string]common.Sign{}},
		{"", map[string]common.Sign{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseSignTable(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseSignTable(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ASSEMBLY_EXCLUDE_TYPES", "ASSEMBLY_MAX_COMPLEX_SIZE", "ASSEMBLY_SIGN_TABLE",
		"ASSEMBLY_NS_PRIORITY", "STATEMENTS_SOURCE", "PORT", "LOG_FORMAT", "DEBUG",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("STATEMENTS_SOURCE", "file")

	cfg := Load()
	if cfg.Table.MaxComplexSize != table.DefaultMaxComplexSize {
		t.Fatalf("MaxComplexSize = %d, want %d", cfg.Table.MaxComplexSize, table.DefaultMaxComplexSize)
	}
	if cfg.Table.SignTable != nil {
		t.Fatalf("SignTable = %v, want nil so the default applies", cfg.Table.SignTable)
	}
	if cfg.Source != SourceFile {
		t.Fatalf("Source = %q, want %q", cfg.Source, SourceFile)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("ASSEMBLY_EXCLUDE_TYPES", "Complex,Influence")
	t.Setenv("ASSEMBLY_MAX_COMPLEX_SIZE", "5")
	t.Setenv("ASSEMBLY_SIGN_TABLE", "Activation:0")
	t.Setenv("ASSEMBLY_NS_PRIORITY", "UP,HGNC")
	t.Setenv("ASSEMBLY_PARALLEL_BATCHES", "oops")
	t.Setenv("STATEMENTS_SOURCE", "S3")
	t.Setenv("PORT", "9000")

	cfg := Load()
	if !reflect.DeepEqual(cfg.Table.ExcludeTypes, []string{"Complex", "Influence"}) {
		t.Fatalf("ExcludeTypes = %v", cfg.Table.ExcludeTypes)
	}
	if cfg.Table.MaxComplexSize != 5 {
		t.Fatalf("MaxComplexSize = %d, want 5", cfg.Table.MaxComplexSize)
	}
	if !reflect.DeepEqual(cfg.Table.SignTable, map[string]common.Sign{"Activation": common.SignPositive}) {
		t.Fatalf("SignTable = %v", cfg.Table.SignTable)
	}
	if !reflect.DeepEqual(cfg.Table.NamespacePriority, []string{"UP", "HGNC"}) {
		t.Fatalf("NamespacePriority = %v", cfg.Table.NamespacePriority)
	}
	if cfg.ParallelBatches != 0 {
		t.Fatalf("ParallelBatches = %d, want 0 for malformed input", cfg.ParallelBatches)
	}
	if cfg.Source != SourceS3 {
		t.Fatalf("Source = %q, want %q", cfg.Source, SourceS3)
	}
	if cfg.Port != "9000" {
		t.Fatalf("Port = %q, want 9000", cfg.Port)
	}
}

func TestLoadUnknownSource(t *testing.T) {
	t.Setenv("STATEMENTS_SOURCE", "ftp")
	if got := Load().Source; got != SourceFile {
		t.Fatalf("Source = %q, want %q", got, SourceFile)
	}
}
