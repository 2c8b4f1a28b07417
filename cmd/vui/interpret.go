package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"voice-scene/internal/application"
	"voice-scene/internal/domain"
	"voice-scene/internal/interpret"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret <phrase>",
	Short: "Show what a phrase would do without touching the scene",
	Example: `  vui interpret 赤いターゲットを下に移動
  vui interpret --config en.yaml "rotate the blue target"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func runInterpret(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	kw, err := loadKeywords(cfg.Keywords)
	if err != nil {
		return err
	}

	phrase := strings.Join(args, " ")
	dec := interpret.NewInterpreter(kw).Interpret(phrase)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "command:   %s\n", dec.Command)
	fmt.Fprintf(out, "target:    %s\n", orNone(string(dec.Target)))
	fmt.Fprintf(out, "direction: %s\n", orNone(string(dec.Direction)))

	printer := &effectPrinter{out: out}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if !application.NewDispatcher(printer, printer, quiet).Dispatch(dec) {
		fmt.Fprintln(out, "effect:    none")
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// effectPrinter describes effects instead of performing them.
type effectPrinter struct {
	out io.Writer
}

func (p *effectPrinter) Apply(t domain.Transform) {
	switch t.Kind {
	case domain.CommandRotate:
		fmt.Fprintf(p.out, "effect:    rotate %s by %.4f rad around y over %s\n", t.Target, t.RotateY, t.Duration)
	case domain.CommandMove:
		fmt.Fprintf(p.out, "effect:    move %s by %+.2f on y over %s\n", t.Target, t.MoveY, t.Duration)
	default:
		fmt.Fprintf(p.out, "effect:    scale %s by %.1f over %s\n", t.Target, t.Scale, t.Duration)
	}
}

func (p *effectPrinter) Send(text string) {
	fmt.Fprintf(p.out, "effect:    notify %q\n", text)
}
