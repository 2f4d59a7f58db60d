package notifier

import (
	"fmt"
	"strings"

	"CoinSentinel/internal/model"
)

// maxReasonLines caps how many factor reasons make it into an alert.
const maxReasonLines = 4

func headline(action model.Action, forced bool) string {
	if forced {
		return "🧪 <b>TEST ALERT</b>"
	}
	switch action {
	case model.ActionBuy:
		return "🚨 <b>BUY signal</b>"
	case model.ActionSell:
		return "📉 <b>SELL signal</b>"
	default:
		return "ℹ️ <b>No action</b>"
	}
}

// FormatAlert formats a signal into a Telegram message: headline, price,
// the top few reason strings, and a timestamp.
func FormatAlert(sig *model.Signal, forced bool) string {
	var b strings.Builder

	b.WriteString(headline(sig.Action, forced))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("<b>Price:</b> $%.2f\n", sig.Price))
	b.WriteString(fmt.Sprintf("<b>Score:</b> %d/100\n\n", sig.Score))

	b.WriteString("<b>Reasons:</b>\n")
	reasons := sig.Reason
	if len(reasons) > maxReasonLines {
		reasons = reasons[:maxReasonLines]
	}
	for _, r := range reasons {
		b.WriteString("• " + r + "\n")
	}

	b.WriteString(fmt.Sprintf("\n<b>Time:</b> %s\n", sig.At.Format("2006-01-02 15:04:05 MST")))
	return b.String()
}

// FormatSignalSummary renders the last computed signal for the /signal command.
func FormatSignalSummary(sig *model.Signal) string {
	if sig == nil {
		return "No signal computed yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Last signal</b> | %s\n\n", sig.At.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Action: %s | Score: %d/100\n", sig.Action, sig.Score))
	b.WriteString(fmt.Sprintf("Price: $%.2f\n", sig.Price))
	b.WriteString(fmt.Sprintf("EMA50: %.2f | EMA200: %.2f\n", sig.Indicators.EMAShort, sig.Indicators.EMALong))
	if rsi, ok := sig.Indicators.RSIValue(); ok {
		b.WriteString(fmt.Sprintf("RSI14: %.1f\n", rsi))
	} else {
		b.WriteString("RSI14: n/a\n")
	}
	b.WriteString(fmt.Sprintf("1h: %+.2f%% | 24h: %+.2f%% | rebound: %+.2f%%\n",
		sig.Indicators.Change1h, sig.Indicators.Change24h, sig.Indicators.Rebound))
	return b.String()
}

// FormatTradeState renders the cooldown record for the /state command.
func FormatTradeState(st model.TradeState, exists bool) string {
	if !exists || st.LastAction == model.ActionNone {
		return "🟢 No active cooldown."
	}
	var b strings.Builder
	b.WriteString("🕒 <b>Cooldown state</b>\n\n")
	b.WriteString(fmt.Sprintf("Last action: %s\n", st.LastAction))
	b.WriteString(fmt.Sprintf("At: %s\n", st.LastAt.Format("2006-01-02 15:04:05 MST")))
	if st.LastPrice > 0 {
		b.WriteString(fmt.Sprintf("Price: $%.2f\n", st.LastPrice))
	}
	return b.String()
}
