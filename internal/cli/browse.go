package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"paperlens/internal/app"
	"paperlens/internal/tui"
)

func newBrowseCmd(st *state) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search papers and images interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				m := tui.New(cmd.Context(), a.Papers, a.Images, topK)
				p := tea.NewProgram(m, tea.WithAltScreen(),
					tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
				_, err := p.Run()
				return err
			})
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "number of results per query")
	return cmd
}
