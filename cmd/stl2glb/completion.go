package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for stl2glb.

Bash:

  $ source <(stl2glb completion bash)

Zsh:

  $ stl2glb completion zsh > "${fpath[1]}/_stl2glb"

Fish:

  $ stl2glb completion fish | source
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		default:
			return rootCmd.GenFishCompletion(out, true)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
