package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/iyunix/mediscribe/internal/domain"
)

var errDegraded = errors.New("model reply was not a structured note")

// generateFlags holds the flags for the generate command
type generateFlags struct {
	inputFlags
	format         string
	output         string
	outDir         string
	failOnDegraded bool
}

func newGenerateCommand(deps Deps) *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate [narrative...]",
		Short: "Generate a SOAP note",
		Long: `Generate a SOAP note from a patient narrative.

The narrative is taken from the arguments, from --file, or from stdin.

Examples:
  soapnote generate "I have a headache and mild fever for two days"
  soapnote generate --file narrative.txt --format yaml
  cat narrative.txt | soapnote generate --output note.json
  soapnote generate --file narrative.txt --out-dir notes/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, deps, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read the narrative from a file")
	cmd.Flags().StringVar(&flags.format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Write the note to a file instead of stdout")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "Write the note to a new time-ordered file in this directory")
	cmd.MarkFlagsMutuallyExclusive("output", "out-dir")
	cmd.Flags().BoolVar(&flags.failOnDegraded, "fail-on-degraded", false, "Exit non-zero when the reply is not a structured note")
	return cmd
}

func runGenerate(cmd *cobra.Command, deps Deps, flags *generateFlags, args []string) error {
	if flags.format != "json" && flags.format != "yaml" {
		return fmt.Errorf("unsupported format %q (want json or yaml)", flags.format)
	}

	narrative, err := readNarrative(deps.Fs, &flags.inputFlags, args, cmd.InOrStdin(), deps.MaxNarrativeBytes)
	if err != nil {
		return err
	}
	if err := domain.ValidateNarrative(narrative); err != nil {
		return err
	}

	if deps.NewGenerator == nil {
		return fmt.Errorf("no note generator configured")
	}
	generator, err := deps.NewGenerator()
	if err != nil {
		return err
	}

	note, err := generator.GenerateNote(cmd.Context(), narrative)
	if err != nil {
		return err
	}

	data, err := encodeNote(note, flags.format)
	if err != nil {
		return err
	}

	path := flags.output
	if flags.outDir != "" {
		if err := deps.Fs.MkdirAll(flags.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path = filepath.Join(flags.outDir, ulid.Make().String()+"."+flags.format)
	}

	if path != "" {
		if err := afero.WriteFile(deps.Fs, path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write note: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Note written to %s\n", path)
	} else if _, err := io.Copy(cmd.OutOrStdout(), bytes.NewReader(data)); err != nil {
		return err
	}

	if flags.failOnDegraded && note.IsDegraded() {
		return errDegraded
	}
	return nil
}

func encodeNote(note *domain.SoapNote, format string) ([]byte, error) {
	if format == "yaml" {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(note); err != nil {
			return nil, fmt.Errorf("failed to encode note: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	data, err := json.MarshalIndent(note, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode note: %w", err)
	}
	return append(data, '\n'), nil
}
