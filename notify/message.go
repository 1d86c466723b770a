package notify

import (
	"fmt"
	"strings"

	"github.com/rafeeqops/rafeeq/model"
)

// Voice message fragments, spoken in Arabic by the telephony voice.
const (
	autoPrefix   = "تنبيه تلقائي. "
	systemHeader = "نظام رفيق للمراقبة الصحية. تنبيه عاجل."
	systemFooter = "يرجى التحقق من حالة المريض فوراً."
	sayVoice     = "Polly.Zeina"
	sayLanguage  = "ar-SA"
)

// AlertReason renders the per-type alert reason. The phrasing is dictated
// by the caregiver-facing voice script, one variant per alert type.
func AlertReason(alertType model.AlertType, r model.VitalReading, emotion model.Emotion, autoTriggered bool) string {
	prefix := ""
	if autoTriggered {
		prefix = autoPrefix
	}
	switch alertType {
	case model.AlertHelp:
		return fmt.Sprintf("%sالمريض يطلب المساعدة. الحالة النفسية: %s", prefix, emotion)
	case model.AlertHeart:
		return fmt.Sprintf("%sدقات القلب %d. أعلى من الحد الطبيعي", prefix, r.HeartRate)
	case model.AlertFall:
		return prefix + "كشف السقوط. تحتاج إلى مساعدة فورية"
	case model.AlertSpo2:
		return fmt.Sprintf("%sمستوى الأكسجين منخفض. %d بالمئة", prefix, r.SpO2)
	case model.AlertTemp:
		return fmt.Sprintf("%sدرجة الحرارة غير طبيعية. %.1f درجة", prefix, r.Temperature)
	default:
		return prefix + "حالة طوارئ عامة"
	}
}

// VoiceMessage renders the full spoken message: header, reason, a readout
// of the current vitals, and the closing instruction.
func VoiceMessage(alertType model.AlertType, r model.VitalReading, emotion model.Emotion, autoTriggered bool) string {
	parts := []string{
		systemHeader,
		AlertReason(alertType, r, emotion, autoTriggered) + ".",
		fmt.Sprintf("معدل النبض %d.", r.HeartRate),
		fmt.Sprintf("الأكسجين %d بالمئة.", r.SpO2),
		fmt.Sprintf("درجة الحرارة %.1f.", r.Temperature),
		systemFooter,
	}
	return strings.Join(parts, " ")
}

// TwiML wraps a spoken message in the telephony markup the call API expects.
func TwiML(message string) string {
	return fmt.Sprintf(
		`<Response><Say voice=%q language=%q>%s</Say></Response>`,
		sayVoice, sayLanguage, xmlEscape(message),
	)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
