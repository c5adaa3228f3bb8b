package messaging

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Templates holds the message bodies, loaded from a yaml file so operators
// can adjust wording without a deploy. Placeholders: {resident_name},
// {context_count}, {detail_list}.
type Templates struct {
	PackageNotification string `yaml:"package_notification"`
	OptInRequest        string `yaml:"opt_in_request"`
}

const (
	defaultPackageTemplate = "Hello {resident_name}, you have {context_count} package(s) waiting at the front desk.\n{detail_list}"
	defaultOptInTemplate   = "Hello {resident_name}, would you like to receive condominium notifications on WhatsApp?"
)

// LoadTemplates reads the template file at path. A missing or unreadable file
// falls back to the built-in defaults; empty fields fall back individually.
func LoadTemplates(path string) (*Templates, error) {
	t := &Templates{
		PackageNotification: defaultPackageTemplate,
		OptInRequest:        defaultOptInTemplate,
	}
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}

	var loaded Templates
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return t, err
	}
	if loaded.PackageNotification != "" {
		t.PackageNotification = loaded.PackageNotification
	}
	if loaded.OptInRequest != "" {
		t.OptInRequest = loaded.OptInRequest
	}
	return t, nil
}

// Render substitutes the known placeholders into a template body.
func Render(template, residentName string, contextCount int) string {
	detail := fmt.Sprintf("%d package(s) awaiting pickup", contextCount)
	replacer := strings.NewReplacer(
		"{resident_name}", residentName,
		"{context_count}", fmt.Sprintf("%d", contextCount),
		"{detail_list}", detail,
	)
	return replacer.Replace(template)
}
