package postprocessors

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// upperProcessor upper-cases chunk content; it never creates chunks.
type upperProcessor struct{}

func (upperProcessor) Name() string { return "upper" }

func (upperProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].Content = strings.ToUpper(chunks[i].Content)
	}
	return chunks, nil
}

func buildUpper(_ map[string]any) (driven.PostProcessor, error) {
	return upperProcessor{}, nil
}

func TestRegistry_Empty(t *testing.T) {
	r := NewRegistry()

	if r.Has("chunker") {
		t.Error("empty registry should not know the chunker")
	}
	if names := r.Names(); len(names) != 0 {
		t.Errorf("Names() = %v, want empty", names)
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("upper", func(_ map[string]any) (driven.PostProcessor, error) {
		return nil, errors.New("first binding")
	})
	r.Register("upper", buildUpper)

	proc, err := r.Build("upper", nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if proc.Name() != "upper" {
		t.Errorf("Name() = %q, want upper", proc.Name())
	}
}

func TestRegistry_Build_PassesConfig(t *testing.T) {
	r := NewRegistry()
	var got map[string]any
	r.Register("probe", func(cfg map[string]any) (driven.PostProcessor, error) {
		got = cfg
		return upperProcessor{}, nil
	})

	if _, err := r.Build("probe", map[string]any{"chunk_size": 12}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got["chunk_size"] != 12 {
		t.Errorf("builder saw %v, want chunk_size 12", got)
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Build("stemmer", nil)

	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Build() error = %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), `"stemmer"`) || !strings.Contains(err.Error(), "chunker") {
		t.Errorf("error %q should name the unknown and the known processors", err)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register("upper", buildUpper)
	r.Register("abbrev", buildUpper)

	want := []string{"abbrev", "chunker", "upper"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestDefaultRegistry_Chunker(t *testing.T) {
	tests := []struct {
		name    string
		cfg     map[string]any
		content string
		want    []string
		wantErr bool
	}{
		{"default size keeps short text whole", nil, "short text", []string{"short text"}, false},
		{"int size", map[string]any{"chunk_size": 4}, "abcdefghij", []string{"abcd", "efgh", "ij"}, false},
		{"int64 size from toml", map[string]any{"chunk_size": int64(5)}, "abcdefghij", []string{"abcde", "fghij"}, false},
		{"float64 size from json", map[string]any{"chunk_size": float64(3)}, "abcdefg", []string{"abc", "def", "g"}, false},
		{"string size is rejected", map[string]any{"chunk_size": "4"}, "", nil, true},
		{"zero size is rejected", map[string]any{"chunk_size": 0}, "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := NewDefaultRegistry().Build("chunker", tt.cfg)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("Build() error = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			chunks, err := proc.Process(context.Background(), &domain.Document{ID: 1, Content: tt.content}, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			got := make([]string, len(chunks))
			for i, c := range chunks {
				got[i] = c.Content
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("chunks = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
		want int
	}{
		{"int", map[string]any{"size": 100}, 100},
		{"int64", map[string]any{"size": int64(200)}, 200},
		{"float64", map[string]any{"size": float64(300)}, 300},
		{"string", map[string]any{"size": "400"}, 0},
		{"missing", map[string]any{"other": 100}, 0},
		{"nil map", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getIntFromConfig(tt.cfg, "size"); got != tt.want {
				t.Errorf("getIntFromConfig() = %d, want %d", got, tt.want)
			}
		})
	}
}
