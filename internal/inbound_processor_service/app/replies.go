package app

import (
	"fmt"
	"strings"

	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

const (
	replyNoOpenCalls = "אין כרגע קריאות פתוחות במערכת עבור המקצוע שלך. נעדכן אותך כשתגיע קריאה חדשה."
	replyCompleted   = "תודה! השירות סומן כהושלם במערכת."
)

const replyDateLayout = "02/01/2006 15:04"

// acceptConfirmation echoes the call's title, locations and date and asks for COMPLETE when done.
func acceptConfirmation(sc *servicecall.ServiceCall) string {
	var b strings.Builder
	b.WriteString("תודה שקיבלת את העבודה!\n")
	if sc != nil {
		fmt.Fprintf(&b, "כותרת: %s\n", sc.Title)
		fmt.Fprintf(&b, "מיקום: %s\n", strings.Join(sc.Locations, ", "))
		fmt.Fprintf(&b, "תאריך: %s\n", sc.ScheduledAt.Format(replyDateLayout))
	}
	b.WriteString("\nנא לשלוח \"COMPLETE\" כאשר העבודה מסתיימת.")
	return b.String()
}
