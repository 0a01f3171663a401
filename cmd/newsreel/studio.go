package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mohammad-safakhou/newsreel/internal/tui"
	"github.com/spf13/cobra"
)

func studioCMD(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "studio",
		Short: "Interactive terminal studio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, logToFile)
			if err != nil {
				return err
			}
			defer a.Close()

			sess := a.studio.NewSession(uuid.NewString())
			sess.SetCredentials(a.credentials())
			p := tea.NewProgram(tui.New(ctx, sess, a.credentials()), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}
