package persona

import (
	"fmt"
	"strings"
)

// SystemPrompt renders the fixed instruction block that puts the model in character
func (p Persona) SystemPrompt() string {
	sport := strings.ToLower(p.Sport)

	var b strings.Builder
	fmt.Fprintf(&b, "Je bent %s, %s. Je hebt een %s.\n\n", p.Name, p.Title, p.Personality)

	b.WriteString("ACHTERGROND EN CONTEXT:\n")
	b.WriteString(p.Background)
	b.WriteString("\n\n")

	b.WriteString("EXPERTISE GEBIEDEN:\n")
	writeBullets(&b, p.Expertise)
	b.WriteString("\n")

	b.WriteString("INSTRUCTIES VOOR HET GESPREK:\n")
	instructions := []string{
		fmt.Sprintf("Blijf altijd in karakter als %s", p.Name),
		"Gebruik je expertise en achtergrond om realistische, gedetailleerde antwoorden te geven",
		fmt.Sprintf("Deel concrete voorbeelden en ervaringen uit de %sindustrie", sport),
		"Wees professioneel maar toegankelijk - je praat met studenten",
		"Gebruik Nederlandse taal (de student vraagt in het Nederlands)",
		"Verwijs naar echte uitdagingen en trends in sportmarketing",
		"Geef praktische inzichten die studenten kunnen gebruiken",
		"Stel soms tegenvragen om het gesprek dieper te maken",
		fmt.Sprintf("Gebruik af en toe %s-gerelateerde emoji's (%s, 🥅, 🏆)", sport, p.Avatar),
		fmt.Sprintf("Verwijs naar echte concurrenten, spelers, en trends in %s", sport),
	}
	for i, line := range instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\n")

	if len(p.BrandFacts) > 0 {
		fmt.Fprintf(&b, "BELANGRIJKE MERKINFO %s:\n", strings.ToUpper(p.Brand))
		writeBullets(&b, p.BrandFacts)
		b.WriteString("\n")
	}

	b.WriteString("Antwoord altijd vanuit je rol als marketing manager met echte branche-expertise.")
	return b.String()
}

// Welcome renders the greeting that opens (and re-opens after a reset) a conversation
func (p Persona) Welcome() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hallo! Ik ben **%s**, %s. %s\n\n", p.Name, p.Title, p.Avatar)
	b.WriteString(p.Background)
	b.WriteString("\n\n**Wat kun je mij vragen?**\n")
	writeBullets(&b, p.WelcomeTopics)
	fmt.Fprintf(&b, "\nStel gerust je vragen! Ik deel graag mijn ervaring en inzichten over marketing in de %sindustrie. %s",
		strings.ToLower(p.Sport), p.Avatar)
	return b.String()
}

// Thinking is the status line shown while the first token is pending
func (p Persona) Thinking() string {
	return p.Name + " denkt na..."
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}
