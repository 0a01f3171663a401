package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/spf13/cobra"
)

func headlinesCMD(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "headlines",
		Short: "Fetch and list trending headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := a.studio.NewSession(uuid.NewString())
			sess.SetCredentials(a.credentials())
			res, err := sess.FetchHeadlines(cmd.Context())
			if err != nil {
				return fetchError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d trending stories!\n", len(res.Headlines))
			for i, h := range res.Headlines {
				marker := " "
				if h.HasImage() {
					marker = "*"
				}
				fmt.Fprintf(out, "%2d. %s %s\n", i+1, marker, h.Title)
			}
			return nil
		},
	}
}

// fetchError keeps the gate message short and shows the cause of a failed fetch.
func fetchError(err error) error {
	if errors.Is(err, models.ErrMissingNewsKey) || errors.Is(err, models.ErrNoHeadlines) {
		return errors.New(models.OperatorMessage(err))
	}
	return fmt.Errorf("%s (%w)", models.NoNewsMessage, err)
}
