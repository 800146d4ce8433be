package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erkantaylan/markview/internal/document"
	"github.com/erkantaylan/markview/internal/markdown"
)

// renderOutput is the JSON shape printed by `render --json`.
type renderOutput struct {
	Title string              `json:"title"`
	HTML  string              `json:"html"`
	TOC   []markdown.TocEntry `json:"toc"`
}

func (a *app) render(path string) (*document.Document, markdown.Result, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, markdown.Result{}, err
	}
	r := markdown.NewRenderer(markdown.WithLogger(a.log))
	return doc, r.Render(doc.Content), nil
}

func newRenderCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print a markdown file as sanitized HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, res, err := a.render(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !asJSON {
				_, err := fmt.Fprintln(out, res.HTML)
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(renderOutput{Title: doc.Title, HTML: res.HTML, TOC: res.TOC})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print title, html and toc as JSON")
	return cmd
}

func newTocCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toc <file>",
		Short: "Print the heading outline of a markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := a.render(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.TOC) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no headings"))
				return nil
			}
			for _, e := range res.TOC {
				indent := strings.Repeat("  ", e.Level-1)
				fmt.Fprintf(out, "%s%s %s\n", indent, headingStyle(e.Level).Render(e.Text), dimStyle.Render("#"+e.ID))
			}
			return nil
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print the title and statistics of a markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			info := doc.Info
			rows := [][2]string{
				{"Path", info.Path},
				{"Size", fmt.Sprintf("%d bytes", info.Size)},
				{"Modified", info.ModTime.Format("2006-01-02 15:04:05")},
				{"Lines", fmt.Sprint(info.Lines)},
				{"Words", fmt.Sprint(info.Words)},
				{"Characters", fmt.Sprint(info.Characters)},
				{"Reading time", fmt.Sprintf("%d min", info.ReadingMinutes)},
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(doc.Title))
			for _, row := range rows {
				fmt.Fprintf(out, "%s%s\n", labelStyle.Render(row[0]), row[1])
			}
			return nil
		},
	}
}
