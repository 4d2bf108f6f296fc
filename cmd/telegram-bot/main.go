package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "telegram-bot"

var configPath string

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Superbet tracking link builder bot",
	Long: `Telegram bot that turns a shared Superbet bet slip into an affiliate
tracking link.

The user sends their affiliate link (wlsuperbet.adsrv.eacdn.com/C.ashx?...)
once, then any bet slip link or code, and gets back the tracked link.

Run without a subcommand to start the bot.`,
	SilenceUsage: true,
	RunE:         runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot (long polling)",
	RunE:  runBot,
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Build a tracking link offline",
	Example: `  telegram-bot link \
    --affiliate 'https://wlsuperbet.adsrv.eacdn.com/C.ashx?btag=a_11566b_431c_&affid=662&siteid=11566&adid=431&c=Telegram' \
    --bet 891S-YJLHXM`,
	Args: cobra.NoArgs,
	RunE: runLink,
}

var (
	linkAffiliate string
	linkBet       string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/telegram-bot.yaml", "Path to the YAML config file")

	linkCmd.Flags().StringVar(&linkAffiliate, "affiliate", "", "Affiliate tracking link (required)")
	linkCmd.Flags().StringVar(&linkBet, "bet", "", "Shared bet slip link or code (required)")
	linkCmd.MarkFlagRequired("affiliate")
	linkCmd.MarkFlagRequired("bet")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(linkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
