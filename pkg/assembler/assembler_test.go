package assembler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/graph"
	"github.com/OFFIS-RIT/biograph/pkg/table"
)

func statements(n int) []*common.Statement {
	types := []string{"Activation", "Inhibition", "Complex", "Phosphorylation"}
	stmts := make([]*common.Statement, 0, n)
	for i := 0; i < n; i++ {
		a := &common.Agent{Name: fmt.Sprintf("G%d", i%7)}
		b := &common.Agent{Name: fmt.Sprintf("G%d", (i*3+1)%7)}
		stmt := &common.Statement{Type: types[i%len(types)], Hash: int64(i), Belief: 0.6}
		if stmt.Type == "Complex" {
			stmt.Members = []*common.Agent{a, b}
		} else {
			stmt.Subject = a
			stmt.Objects = []*common.Agent{b}
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func TestAssembleMatchesSequentialBuild(t *testing.T) {
	stmts := statements(103)

	seqTable, seqStats := table.Build(stmts, table.Config{})
	seqNet, _, err := graph.Build(seqTable)
	if err != nil {
		t.Fatalf("graph.Build() error = %v", err)
	}

	a := NewAssembler(NewAssemblerParams{BatchSize: 10, ParallelBatches: 4})
	res, err := a.Assemble(context.Background(), stmts)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if res.TableStats != seqStats {
		t.Fatalf("stats = %+v, want %+v", res.TableStats, seqStats)
	}
	if !reflect.DeepEqual(res.Table.Rows, seqTable.Rows) {
		t.Fatal("rows differ from a sequential build")
	}
	if !reflect.DeepEqual(res.Network.Nodes(), seqNet.Nodes()) {
		t.Fatal("nodes differ from a sequential build")
	}
	if !reflect.DeepEqual(res.Network.Edges(), seqNet.Edges()) {
		t.Fatal("edges differ from a sequential build")
	}
}

func TestAssembleEmpty(t *testing.T) {
	a := NewAssembler(NewAssemblerParams{})
	res, err := a.Assemble(context.Background(), nil)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if res.Network.NumNodes() != 0 || res.Network.NumEdges() != 0 {
		t.Fatalf("network has %d nodes and %d edges, want empty", res.Network.NumNodes(), res.Network.NumEdges())
	}
}

func TestAssembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAssembler(NewAssemblerParams{BatchSize: 5})
	_, err := a.Assemble(ctx, statements(20))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Assemble() error = %v, want context.Canceled", err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []int
	}{
		{"Empty", 0, 3, nil},
		{"Exact", 6, 3, []int{3, 3}},
		{"Remainder", 7, 3, []int{3, 3, 1}},
		{"SingleBatch", 2, 10, []int{2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []int
			for _, b := range split(statements(tc.n), tc.size) {
				got = append(got, len(b))
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("split(%d, %d) = %v, want %v", tc.n, tc.size, got, tc.want)
			}
		})
	}
}
