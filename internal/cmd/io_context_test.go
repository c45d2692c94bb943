package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/config"
)

func TestStreamsFallBackToProcessStreams(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"nil context", nil},
		{"no streams", context.Background()},
		{"nil streams", withIO(context.Background(), nil, nil, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if stdinFromContext(tt.ctx) != os.Stdin {
				t.Error("stdin did not fall back to os.Stdin")
			}
			if stdoutFromContext(tt.ctx) != os.Stdout {
				t.Error("stdout did not fall back to os.Stdout")
			}
			if stderrFromContext(tt.ctx) != os.Stderr {
				t.Error("stderr did not fall back to os.Stderr")
			}
		})
	}
}

func TestStreamsArePerStream(t *testing.T) {
	out := &bytes.Buffer{}
	ctx := withIO(context.Background(), nil, out, nil)

	if stdoutFromContext(ctx) != out {
		t.Fatal("expected injected stdout")
	}
	if stdinFromContext(ctx) != os.Stdin || stderrFromContext(ctx) != os.Stderr {
		t.Fatal("unset streams should still fall back")
	}
}

func TestLoadTreeReadsInjectedStdin(t *testing.T) {
	withEnv(t, map[string]string{})
	withConfig(t, &config.Config{})

	cmd := &cobra.Command{}
	cmd.SetContext(withIO(context.Background(), strings.NewReader("Root\n|-- Child\n"), &bytes.Buffer{}, &bytes.Buffer{}))

	root, source, err := loadTree(cmd, []string{"-"})
	if err != nil {
		t.Fatalf("loadTree() error = %v", err)
	}
	if displayPath(source) != "stdin" {
		t.Fatalf("source = %q", source)
	}
	if root.Name != "Root" || len(root.Children) != 1 || root.Children[0].Name != "Child" {
		t.Fatalf("unexpected tree %+v", root)
	}
}
