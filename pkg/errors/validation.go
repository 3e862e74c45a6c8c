package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name taken from a manifest before
// it is ever placed on a runner command line.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No leading dash (would be read as a flag)
//   - No whitespace or control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
//
// Ecosystem-specific validation is done by the Validate*PackageName helpers.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	if strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidPackage, "package name cannot start with a dash: %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", name)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a repository URL target.
// It ensures the URL has an http or https scheme and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "URL contains invalid characters: %q", rawURL)
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed URL %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}

	return nil
}

// npmPackageNameRegex matches npm package names, including legacy
// mixed-case names that the registry still serves.
var npmPackageNameRegex = regexp.MustCompile(`^(@[a-zA-Z0-9-~][a-zA-Z0-9-._~]*/)?[a-zA-Z0-9-~][a-zA-Z0-9-._~]*$`)

// ValidateNpmPackageName validates an npm package name.
func ValidateNpmPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !npmPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid npm package name: %q", name)
	}

	return nil
}

// cratesPackageNameRegex matches valid crates.io package names.
var cratesPackageNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCratesPackageName validates a crates.io package name.
func ValidateCratesPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !cratesPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid crates.io package name: %q", name)
	}

	return nil
}

// nugetPackageIDRegex matches valid NuGet package ids.
var nugetPackageIDRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidateNuGetPackageID validates a NuGet package id.
func ValidateNuGetPackageID(id string) error {
	if err := ValidatePackageName(id); err != nil {
		return err
	}

	if len(id) > 100 {
		return New(ErrCodeInvalidPackage, "NuGet package id too long (max 100 characters)")
	}

	if !nugetPackageIDRegex.MatchString(id) {
		return New(ErrCodeInvalidPackage, "invalid NuGet package id: %q", id)
	}

	return nil
}
