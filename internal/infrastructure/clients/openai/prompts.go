package openai

import (
	"fmt"
	"strings"

	"github.com/waitwell/edflow/backend/internal/domain/entities"
)

const assistantSystemPrompt = `You are a calm, supportive assistant for patients waiting in a hospital emergency department. Answer questions about the ED process, triage levels, what the journey stages mean and what to expect next. Use the patient's current visit context when it is provided. Keep answers short, plain-language and reassuring. Never give medical advice, never speculate about a diagnosis, and direct anyone describing worsening symptoms to alert ED staff immediately.`

// buildJourneyUserPrompt wraps the patient's question with their current
// visit context so answers can reference where they are in the journey.
// A nil snapshot means no session data is available yet.
func buildJourneyUserPrompt(message string, snapshot *entities.VisitSnapshot) string {
	if snapshot == nil {
		return message
	}

	var b strings.Builder
	b.WriteString("Current visit context:\n")
	fmt.Fprintf(&b, "- Current phase: %s\n", snapshot.Patient.CurrentPhase)
	if snapshot.Patient.KnownTriageCategory() {
		fmt.Fprintf(&b, "- Triage category: %d\n", snapshot.Patient.TriageCategory)
	}
	fmt.Fprintf(&b, "- Time elapsed: %d minutes\n", snapshot.Patient.TimeElapsedMinutes)
	if snapshot.Patient.ExpectedWaitMinutes != nil {
		fmt.Fprintf(&b, "- Expected wait: %d minutes\n", *snapshot.Patient.ExpectedWaitMinutes)
	}
	fmt.Fprintf(&b, "- Queue position: %d overall, %d in category\n",
		snapshot.Patient.QueuePosition.Global, snapshot.Patient.QueuePosition.Category)
	fmt.Fprintf(&b, "- Lab work: %s, Imaging: %s\n",
		snapshot.Patient.Investigations.Labs, snapshot.Patient.Investigations.Imaging)
	fmt.Fprintf(&b, "- Patients waiting in department: %d\n", snapshot.Queue.WaitingCount)
	b.WriteString("\nPatient question: ")
	b.WriteString(message)
	return b.String()
}
