package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Vodeneev/betlinkbot/internal/pkg/tracking"
)

func TestBuildLink(t *testing.T) {
	var out bytes.Buffer
	err := buildLink(&out,
		"https://wlsuperbet.adsrv.eacdn.com/C.ashx?btag=a_11566b_431c_&affid=662&siteid=11566&adid=431&c=Telegram",
		"https://superbet.bet.br/bilhete-compartilhado/891S-YJLHXM")
	if err != nil {
		t.Fatalf("buildLink: %v", err)
	}

	want := "https://wlsuperbet.adsrv.eacdn.com/C.ashx?btag=a_11566b_431c_&affid=662&siteid=11566&adid=431&c=Telegram&asclurl=https%3A%2F%2Fsuperbet.bet.br%2Fbilhete-compartilhado%2F891S-YJLHXM"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("link = %q, want %q", got, want)
	}
}

func TestBuildLink_Errors(t *testing.T) {
	var out bytes.Buffer

	err := buildLink(&out, "https://example.com/C.ashx", "891S-YJLHXM")
	if tracking.KindOf(err) != tracking.KindWrongHost {
		t.Errorf("affiliate error = %v, want wrong host", err)
	}

	err = buildLink(&out,
		"https://wlsuperbet.adsrv.eacdn.com/C.ashx?affid=662&siteid=11566&adid=431&c=Telegram",
		"no")
	if tracking.KindOf(err) != tracking.KindInvalidBetInput {
		t.Errorf("bet error = %v, want invalid bet input", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", out.String())
	}
}

func TestLinkCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"link",
		"--affiliate", "https://wlsuperbet.adsrv.eacdn.com/C.ashx?affid=1&siteid=2&adid=3&c=x",
		"--bet", "ABCD-1234"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "btag=a_2b_3c_") {
		t.Errorf("output = %q", out.String())
	}
}
