package persona

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	p, err := Lookup(Dita)
	if err != nil {
		t.Fatalf("Failed to look up %s: %v", Dita, err)
	}
	if p.Name != "Sarah van der Berg" {
		t.Errorf("Unexpected name: %s", p.Name)
	}
	if len(p.Expertise) == 0 {
		t.Error("Expected expertise topics")
	}

	if _, err := Lookup("unknown"); err == nil {
		t.Error("Expected error for unknown persona")
	}
}

func TestIDsSortedAndComplete(t *testing.T) {
	ids := IDs()
	if len(ids) != len(registry) {
		t.Fatalf("Expected %d ids, got %d", len(registry), len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Errorf("IDs not sorted: %v", ids)
		}
	}
	for _, p := range All() {
		if !Exists(p.ID) {
			t.Errorf("Persona %s listed but not registered", p.ID)
		}
	}
}

func TestSystemPrompt(t *testing.T) {
	p, _ := Lookup(Dita)
	prompt := p.SystemPrompt()

	if !strings.HasPrefix(prompt, "Je bent Sarah van der Berg, Marketing Manager bij Dita Hockey.") {
		t.Errorf("Unexpected prompt start: %q", prompt[:60])
	}
	for _, item := range p.Expertise {
		if !strings.Contains(prompt, "\n- "+item+"\n") {
			t.Errorf("Expertise item %q not rendered on its own line", item)
		}
	}
	if !strings.Contains(prompt, "1. Blijf altijd in karakter als Sarah van der Berg") {
		t.Error("Missing first instruction")
	}
	if !strings.Contains(prompt, "BELANGRIJKE MERKINFO DITA:") {
		t.Error("Missing brand facts header")
	}
	if prompt != p.SystemPrompt() {
		t.Error("SystemPrompt is not deterministic")
	}
}

func TestWelcome(t *testing.T) {
	p, _ := Lookup(Dita)
	welcome := p.Welcome()

	if !strings.HasPrefix(welcome, "Hallo! Ik ben **Sarah van der Berg**, Marketing Manager bij Dita Hockey. 🏒") {
		t.Errorf("Unexpected greeting: %q", welcome)
	}
	if !strings.Contains(welcome, "**Wat kun je mij vragen?**") {
		t.Error("Missing topics header")
	}
	if !strings.HasSuffix(welcome, "marketing in de hockeyindustrie. 🏒") {
		t.Errorf("Unexpected closing line: %q", welcome[len(welcome)-60:])
	}
}
