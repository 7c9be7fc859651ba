package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/paycal/internal/budget"
	"github.com/Veraticus/paycal/internal/recurrence"
)

const weekHeader = "Su   Mo   Tu   We   Th   Fr   Sa"

// RenderMonth draws view as a Sunday-first grid followed by an agenda of
// paydays and due bills. Each cell is the day number, a payday mark and a
// bill mark colored by the most urgent bill that day.
func RenderMonth(view *budget.MonthView, today time.Time) string {
	var b strings.Builder

	title := fmt.Sprintf("%s %d", view.Month, view.Year)
	pad := max((len(weekHeader)-len(title))/2, 0)
	b.WriteString(strings.Repeat(" ", pad) + FormatTitle(title) + "\n")
	b.WriteString(SubtleStyle.Render(weekHeader) + "\n")

	if len(view.Days) > 0 {
		offset := int(view.Days[0].Date.Weekday())
		b.WriteString(strings.Repeat(" ", offset*5))
		for i, cell := range view.Days {
			b.WriteString(renderCell(cell, today))
			if (offset+i)%7 == 6 || i == len(view.Days)-1 {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
	}

	legend := PaydayStyle.Render(PaydayMark) + " payday  " +
		StatusStyle(recurrence.StatusOverdue).Render(BillMark) + " overdue  " +
		StatusStyle(recurrence.StatusDueSoon).Render(BillMark) + " due soon  " +
		StatusStyle(recurrence.StatusUpcoming).Render(BillMark) + " upcoming  " +
		StatusStyle(recurrence.StatusPaid).Render(BillMark) + " paid"
	b.WriteString("\n" + legend + "\n")

	if !view.PaydayConfigured {
		b.WriteString(FormatWarning("payday is not configured; run `paycal payday set`") + "\n")
	}

	agenda := renderAgenda(view)
	if agenda != "" {
		b.WriteString("\n" + agenda)
	}
	return b.String()
}

func renderCell(cell budget.DayCell, today time.Time) string {
	num := fmt.Sprintf("%2d", cell.Date.Day())
	if sameDate(cell.Date, today) {
		num = TodayStyle.Render(num)
	}

	pay := " "
	if cell.IsPayday {
		pay = PaydayStyle.Render(PaydayMark)
	}

	bill := " "
	if len(cell.Bills) > 0 {
		bill = StatusStyle(mostUrgent(cell.Bills)).Render(BillMark)
	}
	return num + pay + bill
}

func renderAgenda(view *budget.MonthView) string {
	var b strings.Builder
	for _, cell := range view.Days {
		date := cell.Date.Format("Jan _2")
		if cell.IsPayday {
			fmt.Fprintf(&b, "%s  %s\n", date, PaydayStyle.Render("payday"))
		}
		for _, bs := range cell.Bills {
			fmt.Fprintf(&b, "%s  %s  %s  %s\n",
				date, bs.Bill.Name, FormatMoney(bs.Bill.Amount), StatusLabel(bs.Status))
		}
	}
	return b.String()
}

var urgency = map[recurrence.Status]int{
	recurrence.StatusPaid:     0,
	recurrence.StatusUpcoming: 1,
	recurrence.StatusDueSoon:  2,
	recurrence.StatusOverdue:  3,
}

func mostUrgent(bills []budget.BillStatus) recurrence.Status {
	worst := bills[0].Status
	for _, bs := range bills[1:] {
		if urgency[bs.Status] > urgency[worst] {
			worst = bs.Status
		}
	}
	return worst
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
