package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/erkantaylan/markview/internal/document"
	"github.com/erkantaylan/markview/internal/frontmatter"
)

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Render a markdown file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			body := []byte(doc.Content)
			if _, rest, ok := frontmatter.Split(body); ok {
				body = rest
			}

			out, err := a.renderTerminal(string(body))
			if err != nil {
				a.log.Warn("terminal render failed, printing source", "error", err)
				out = string(body)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().Int("width", 100, "word wrap width")
	cmd.Flags().String("style", "auto", "glamour style (auto, dark, light, notty, dracula, ...)")
	return cmd
}

func (a *app) renderTerminal(source string) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if s := a.cfg.View.Style; s != "auto" {
		styleOpt = glamour.WithStandardStyle(s)
	}

	renderer, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(a.cfg.View.Width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return renderer.Render(source)
}
