package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Vodeneev/betlinkbot/internal/pkg/tracking"
)

func runLink(cmd *cobra.Command, args []string) error {
	return buildLink(cmd.OutOrStdout(), linkAffiliate, linkBet)
}

func buildLink(w io.Writer, affiliateText, betText string) error {
	affiliate, err := tracking.ParseAffiliate(affiliateText)
	if err != nil {
		return fmt.Errorf("affiliate link: %w", err)
	}
	bet, err := tracking.ParseBet(betText)
	if err != nil {
		return fmt.Errorf("bet slip: %w", err)
	}
	_, err = fmt.Fprintln(w, tracking.BuildLink(affiliate, bet.ResolvedURL))
	return err
}
