package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/newsreel/internal/render"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/spf13/cobra"
)

func produceCMD(opts *rootOptions) *cobra.Command {
	var (
		index int
		title string
	)
	var produce = &cobra.Command{
		Use:   "produce",
		Short: "Fetch headlines, pick one and produce its video",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && index <= 0 {
				return errors.New("either --index or --title is required")
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := a.studio.NewSession(uuid.NewString())
			sess.SetCredentials(a.credentials())
			if _, err := sess.FetchHeadlines(cmd.Context()); err != nil {
				return fetchError(err)
			}
			if title != "" {
				_, err = sess.Select(title)
			} else {
				_, err = sess.SelectIndex(index - 1)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			prod, err := sess.Produce(cmd.Context(), render.ObserverFunc(func(p render.Progress) {
				fmt.Fprintf(out, "[%3d%%] %s\n", p.Percent, p.Label)
			}))
			if err != nil {
				return errors.New(models.OperatorMessage(err))
			}

			fmt.Fprintf(out, "\n%s\n\n%s\n\n", prod.Headline.Title, prod.Script)
			fmt.Fprintf(out, "Words: %d  Length: %s\n", prod.Words, prod.LengthLabel())
			if prod.ImageSkip != "" {
				fmt.Fprintf(out, "Lead image skipped: %s\n", prod.ImageSkip)
			}
			fmt.Fprintf(out, "Video: %s\n", prod.VideoPath)
			return nil
		},
	}
	produce.Flags().IntVar(&index, "index", 0, "headline number as listed by `newsreel headlines` (1-based)")
	produce.Flags().StringVar(&title, "title", "", "exact headline title")
	return produce
}
