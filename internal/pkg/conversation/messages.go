package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
	"github.com/Vodeneev/betlinkbot/internal/pkg/tracking"
)

const (
	exampleAffiliateLink = "https://wlsuperbet.adsrv.eacdn.com/C.ashx?btag=a_11566b_431c_&affid=662&siteid=11566&adid=431&c=Telegram"
	exampleBetLink       = "https://superbet.bet.br/bilhete-compartilhado/891S-YJLHXM"
)

const (
	msgStart = "✅ Vamos configurar seu link.\n\n" +
		"1) Me envie agora seu LINK DE AFILIADO (wlsuperbet.../C.ashx?...)\n" +
		"Exemplo:\n" + exampleAffiliateLink

	msgSetLink = "Beleza. Me envie seu LINK DE AFILIADO agora (wlsuperbet.../C.ashx?...)."

	msgNeedAffiliate = "Antes preciso do seu link de afiliado.\n" +
		"Me envie o link (wlsuperbet.../C.ashx?...)."

	msgAskBet = "Agora me envie o LINK DO BILHETE (ou só o código):\n" + exampleBetLink

	msgNotConfigured = "Você ainda não configurou seu link. Use /start ou /setlink."

	msgReset = "✅ Resetado. Use /start para configurar de novo."

	msgAffiliateFirst = "Me envie primeiro seu link de afiliado (wlsuperbet.../C.ashx?...)."

	msgConfigureFirst = "Antes configure seu link de afiliado:\n" +
		"Use /start ou cole seu link (wlsuperbet.../C.ashx?...)"

	msgAffiliateSavedShort = "✅ Link de afiliado salvo! Agora mande o LINK DO BILHETE."

	msgNotUnderstood = "Não entendi. Use /help."

	msgUnknownCommand = "Comando desconhecido. Use /help para ver os comandos."

	msgInternalError = "❌ Algo deu errado ao processar sua mensagem. Tente de novo.\n\n" +
		"Use /reset se quiser recomeçar."

	msgRetryHint = "\n\nUse /reset se quiser recomeçar."
)

func affiliateDetails(a *models.AffiliateParams) string {
	return fmt.Sprintf("siteid: %s\naffid: %s\nadid: %s\nc: %s", a.SiteID, a.AffID, a.AdID, a.C)
}

func msgAffiliateSaved(a *models.AffiliateParams) string {
	return "✅ Link de afiliado salvo!\n" + affiliateDetails(a) +
		"\n\nAgora me envie o LINK DO BILHETE (ou só o código):\n" + exampleBetLink
}

func msgProfile(a *models.AffiliateParams) string {
	return "✅ Seu cadastro atual:\n" + affiliateDetails(a) + "\n\nPara trocar, use /setlink."
}

func msgTrackedLink(link string) string {
	return "🎟️ Aqui está seu link rastreado:\n" + link
}

func msgHelp() string {
	var b strings.Builder
	b.WriteString("📌 Comandos:\n")
	for _, info := range commands {
		fmt.Fprintf(&b, "/%s - %s\n", info.Name, info.Description)
	}
	b.WriteString("\nVocê também pode só colar o link de afiliado, o link do bilhete ou o código do bilhete aqui no chat.")
	return b.String()
}

// describeError turns a parser error into the text shown to the user.
func describeError(err error) string {
	var text string
	switch tracking.KindOf(err) {
	case tracking.KindInvalidURL:
		text = "Link inválido (não parece uma URL)."
	case tracking.KindWrongHost, tracking.KindWrongPath:
		text = "Esse não parece ser o link de afiliado do tracking (wlsuperbet.../C.ashx)."
	case tracking.KindIncompleteLink:
		text = "Link incompleto. Precisa conter: siteid, affid, adid e c."
	case tracking.KindNonNumericField:
		field := "campo"
		var pe *tracking.ParseError
		if errors.As(err, &pe) && pe.Field != "" {
			field = pe.Field
		}
		text = field + " inválido (deveria ser numérico)."
	case tracking.KindInvalidBetInput:
		text = "Esse não parece ser um link de bilhete compartilhado da Superbet (/bilhete-compartilhado/...) nem um código de bilhete."
	default:
		text = "Não consegui entender esse link."
	}
	return "❌ " + text + msgRetryHint
}
