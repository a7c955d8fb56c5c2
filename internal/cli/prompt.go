package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iyunix/mediscribe/internal/domain"
	"github.com/iyunix/mediscribe/internal/services/soapnote"
)

func newPromptCommand(deps Deps) *cobra.Command {
	flags := &inputFlags{}

	cmd := &cobra.Command{
		Use:   "prompt [narrative...]",
		Short: "Print the prompt that would be sent to the model",
		Long: `Build the model prompt for a narrative and print it without calling the model.

Examples:
  soapnote prompt "I have had a headache for two days"
  soapnote prompt --file narrative.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			narrative, err := readNarrative(deps.Fs, flags, args, cmd.InOrStdin(), deps.MaxNarrativeBytes)
			if err != nil {
				return err
			}
			if err := domain.ValidateNarrative(narrative); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), soapnote.BuildPrompt(narrative))
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read the narrative from a file")
	return cmd
}
