package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"graphgen/internal/domain"
	"graphgen/internal/events"
	"graphgen/internal/generation"
	"graphgen/internal/view"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// format resolves --output, with --json as shorthand for --output json.
func (o *rootOptions) format() (string, error) {
	if o.jsonOutput {
		return formatJSON, nil
	}
	switch o.output {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return o.output, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, json or yaml)", o.output)
	}
}

// writeStructured encodes v as JSON or YAML. It reports false for text output.
func writeStructured(w io.Writer, v any, format string) (bool, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(w, string(data))
		return true, err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func printDisplay(w io.Writer, d view.Display, format string) error {
	if ok, err := writeStructured(w, d, format); ok {
		return err
	}
	switch d.Kind {
	case view.KindSuccess:
		fmt.Fprintln(w, d.Message)
		if d.BoundSummary != "" {
			fmt.Fprintln(w, d.BoundSummary)
		}
		fmt.Fprintf(w, "Download: %s\n", d.DownloadURL)
	case view.KindError:
		fmt.Fprintln(w, d.Message)
	default:
		fmt.Fprintln(w, d.Phase)
	}
	return nil
}

func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// pendingNotice prints the pending submit label when the controller
// announces a dispatch. The controller publishes before it calls the service,
// so the label always precedes the result however fast the service is.
type pendingNotice struct {
	w     io.Writer
	label string
}

func newPendingNotice(w io.Writer, locale string) *pendingNotice {
	st := generation.State{Phase: domain.PhasePending}
	return &pendingNotice{w: w, label: view.Render(st, locale).SubmitLabel}
}

func (p *pendingNotice) Publish(_ context.Context, topic string, _ any) error {
	if topic != events.TopicGenerationPending {
		return nil
	}
	_, err := fmt.Fprintln(p.w, p.label)
	return err
}

func (p *pendingNotice) Close() error { return nil }
