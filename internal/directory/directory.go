// Package directory resolves report categories to emergency-service
// contacts from a loadable file, with a built-in fallback.
package directory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/echo-project/crisis-engine/internal/database"
)

// Directory maps category names to ordered contact lists
type Directory struct {
	services map[string][]database.EmergencyContact
}

// Load reads the emergency-services mapping from a JSON or YAML file.
// A missing or unreadable file is not an error: the built-in default
// directory is used instead and a warning is logged.
func Load(path string) *Directory {
	services, err := loadFile(path)
	if err != nil {
		log.Printf("Directory: could not load emergency services from %s, using defaults: %v", path, err)
		return &Directory{services: defaultServices()}
	}
	log.Printf("Directory: loaded emergency services for %d categories from %s", len(services), path)
	return &Directory{services: services}
}

// NewFromMap builds a directory from an in-memory mapping, for tests and
// embedded configuration.
func NewFromMap(services map[string][]database.EmergencyContact) *Directory {
	if services == nil {
		services = defaultServices()
	}
	return &Directory{services: services}
}

func loadFile(path string) (map[string][]database.EmergencyContact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	services := make(map[string][]database.EmergencyContact)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &services); err != nil {
			return nil, fmt.Errorf("parse yaml directory: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &services); err != nil {
			return nil, fmt.Errorf("parse json directory: %w", err)
		}
	}
	return services, nil
}

// ContactsFor returns the deduplicated union of the contact lists for the
// given categories, preserving first-encountered order. Unknown categories
// contribute nothing.
func (d *Directory) ContactsFor(categories []string) []database.EmergencyContact {
	var contacts []database.EmergencyContact
	seen := make(map[string]bool)

	for _, category := range categories {
		for _, c := range d.services[category] {
			key := c.Name + "|" + c.Phone
			if seen[key] {
				continue
			}
			seen[key] = true
			contacts = append(contacts, c)
		}
	}
	return contacts
}

// Categories returns the category names the directory knows about
func (d *Directory) Categories() []string {
	names := make([]string, 0, len(d.services))
	for name := range d.services {
		names = append(names, name)
	}
	return names
}

// defaultServices ships fixed entries for the standard report categories
func defaultServices() map[string][]database.EmergencyContact {
	return map[string][]database.EmergencyContact{
		"securite": {
			{Name: "Police Municipale", Phone: "17", Email: "police@ville.fr"},
			{Name: "Gendarmerie", Phone: "17", Email: "gendarmerie@ville.fr"},
		},
		"incendie": {
			{Name: "Pompiers", Phone: "18", Email: "pompiers@ville.fr"},
		},
		"sante": {
			{Name: "SAMU", Phone: "15", Email: "samu@ville.fr"},
			{Name: "Hôpital Central", Phone: "04.XX.XX.XX.XX", Email: "urgences@hopital.fr"},
		},
		"infrastructure": {
			{Name: "Services Techniques", Phone: "04.XX.XX.XX.XX", Email: "technique@ville.fr"},
			{Name: "Voirie", Phone: "04.XX.XX.XX.XX", Email: "voirie@ville.fr"},
		},
		"environnement": {
			{Name: "Service Environnement", Phone: "04.XX.XX.XX.XX", Email: "environnement@ville.fr"},
		},
	}
}
