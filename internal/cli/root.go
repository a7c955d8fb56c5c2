// Package cli wires the soapnote command line tool.
package cli

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/iyunix/mediscribe/internal/domain"
)

// NoteGenerator is satisfied by *soapnote.Service.
type NoteGenerator interface {
	GenerateNote(ctx context.Context, narrative string) (*domain.SoapNote, error)
}

// Deps are the collaborators the commands need. NewGenerator is called
// lazily so commands that never reach the model do not need an API key.
type Deps struct {
	Fs           afero.Fs
	NewGenerator func() (NoteGenerator, error)
	// MaxNarrativeBytes bounds stdin and file input.
	MaxNarrativeBytes int64
}

// NewRootCommand creates the soapnote root command
func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.MaxNarrativeBytes <= 0 {
		deps.MaxNarrativeBytes = 16 << 10
	}

	root := &cobra.Command{
		Use:   "soapnote",
		Short: "Turn a patient narrative into a SOAP note",
		Long: `soapnote sends a patient narrative to the configured Gemini model and prints
the resulting SOAP note.

Configuration is read from the environment (GEMINI_API_KEY, GEMINI_MODEL, ...)
or from a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCommand(deps))
	root.AddCommand(newPromptCommand(deps))
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, deps Deps, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand(deps)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
