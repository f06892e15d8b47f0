package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tnt-dev/tnt/pkg/publish"
)

func renderCmd() *cobra.Command {
	var (
		flags projectFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the template once",
		Long: `Mount the template with its data and write the resulting document.

Without --out the document goes to stdout, unless tnt.json sets a publish
target. --out takes a directory or an s3://bucket/prefix target; the
document keeps the template's file name.

Examples:
  tnt render > site.html
  tnt render --data state.yaml --out dist
  tnt render --out s3://my-bucket/previews`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(flags)
			if err != nil {
				return err
			}
			if out == "" {
				out = p.cfg.Publish.Target
			}
			return runRender(cmd.Context(), p, out, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Directory or s3:// target (default: stdout)")

	return cmd
}

// runRender mounts the project and writes the document to target, or to
// stdout when target is empty.
func runRender(ctx context.Context, p *project, target string, stdout io.Writer) error {
	a := p.newApp()
	if err := a.Mount(p.doc, p.container); err != nil {
		return err
	}
	defer a.Unmount()
	page := p.doc.HTML()

	if target == "" {
		_, err := io.WriteString(stdout, page)
		return err
	}

	var opts []publish.Option
	if p.cfg.Publish.Region != "" {
		opts = append(opts, publish.WithRegion(p.cfg.Publish.Region))
	}
	pub, err := publish.Open(ctx, target, opts...)
	if err != nil {
		return err
	}
	location, err := pub.Publish(ctx, filepath.Base(p.templatePath), []byte(page))
	if err != nil {
		return err
	}
	success("Rendered %s", location)
	p.logger.Debug("render complete", "passes", a.Passes(), "location", location)
	return nil
}
