package table

import (
	"maps"
	"slices"
	"strings"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"

	"github.com/go-playground/validator"
)

// DefaultMaxComplexSize is the largest complex that is still expanded into
// pairwise rows.
const DefaultMaxComplexSize = 3

// DefaultSignTable maps increase/activation-like types to SignPositive and
// decrease/inhibition-like types to SignNegative.
var DefaultSignTable = map[string]common.Sign{
	"Activation":     common.SignPositive,
	"Inhibition":     common.SignNegative,
	"IncreaseAmount": common.SignPositive,
	"DecreaseAmount": common.SignNegative,
}

// ExtraColumn derives an additional attribute from each statement. Names
// starting with PrefixAgentA or PrefixAgentB end up on the corresponding
// node, all other names on the edge.
type ExtraColumn struct {
	Name  string `validate:"required"`
	Value func(stmt *common.Statement) any
}

// Config controls how statements are turned into rows. The zero value is
// usable: unset fields take their documented defaults.
//
// ExcludeTypes lists statement type names to ignore.
// MaxComplexSize bounds complex expansion (default 3); 1 disables it.
// SignTable maps directed statement types to a sign; nil means DefaultSignTable.
// NamespacePriority is the ordered namespace lookup; nil means DefaultNamespacePriority.
type Config struct {
	ExcludeTypes      []string `validate:"dive,required"`
	MaxComplexSize    int      `validate:"gte=1"`
	SignTable         map[string]common.Sign
	NamespacePriority []string      `validate:"dive,required"`
	ExtraColumns      []ExtraColumn `validate:"dive"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		MaxComplexSize:    DefaultMaxComplexSize,
		SignTable:         maps.Clone(DefaultSignTable),
		NamespacePriority: slices.Clone(DefaultNamespacePriority),
	}
}

var validate = validator.New()

// Normalize fills unset fields with defaults and repairs malformed values.
// It never fails; every repair is logged as a warning.
func (c Config) Normalize() Config {
	out := Config{
		ExcludeTypes:      slices.Clone(c.ExcludeTypes),
		MaxComplexSize:    c.MaxComplexSize,
		SignTable:         maps.Clone(c.SignTable),
		NamespacePriority: slices.Clone(c.NamespacePriority),
		ExtraColumns:      slices.Clone(c.ExtraColumns),
	}
	if out.MaxComplexSize == 0 {
		out.MaxComplexSize = DefaultMaxComplexSize
	}
	if c.SignTable == nil {
		out.SignTable = maps.Clone(DefaultSignTable)
	}
	if c.NamespacePriority == nil {
		out.NamespacePriority = slices.Clone(DefaultNamespacePriority)
	}

	if err := validate.Struct(out); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			logger.Warn("[Table] Could not validate config", "err", err)
			return out
		}
		for _, fe := range errs {
			field := fe.StructNamespace()
			switch {
			case strings.HasSuffix(field, ".MaxComplexSize"):
				logger.Warn("[Table] Invalid max complex size, using default", "value", out.MaxComplexSize, "default", DefaultMaxComplexSize)
				out.MaxComplexSize = DefaultMaxComplexSize
			case strings.Contains(field, ".ExcludeTypes["):
				logger.Warn("[Table] Dropping empty name from excluded types")
				out.ExcludeTypes = slices.DeleteFunc(out.ExcludeTypes, func(s string) bool { return s == "" })
			case strings.Contains(field, ".NamespacePriority["):
				logger.Warn("[Table] Dropping empty namespace from priority list")
				out.NamespacePriority = slices.DeleteFunc(out.NamespacePriority, func(s string) bool { return s == "" })
			case strings.Contains(field, ".ExtraColumns["):
				logger.Warn("[Table] Dropping extra column without a name")
				out.ExtraColumns = slices.DeleteFunc(out.ExtraColumns, func(col ExtraColumn) bool { return col.Name == "" })
			}
		}
	}

	for name, sign := range out.SignTable {
		if !sign.Known() {
			logger.Warn("[Table] Ignoring sign table entry with invalid sign", "type", name, "sign", int(sign))
			delete(out.SignTable, name)
		}
	}
	out.ExtraColumns = slices.DeleteFunc(out.ExtraColumns, func(col ExtraColumn) bool {
		if col.Value == nil {
			logger.Warn("[Table] Dropping extra column without a value function", "column", col.Name)
			return true
		}
		return false
	})

	return out
}

// ExtraColumnNames returns the names of the configured extra columns.
func (c Config) ExtraColumnNames() []string {
	names := make([]string, 0, len(c.ExtraColumns))
	for _, col := range c.ExtraColumns {
		names = append(names, col.Name)
	}
	return names
}
