package policy

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// PackageRegistry names the ecosystem a package is published in.
type PackageRegistry string

const (
	RegistryNPM   PackageRegistry = "npm"
	RegistryPyPI  PackageRegistry = "pypi"
	RegistryNuGet PackageRegistry = "nuget"
	RegistryMaven PackageRegistry = "maven"
	RegistryCargo PackageRegistry = "cargo"
	RegistryGo    PackageRegistry = "go"
)

// KnownPackage is a vetted dependency for a technology label.
type KnownPackage struct {
	Name      string          `yaml:"name"`
	Version   string          `yaml:"version"`
	Purpose   string          `yaml:"purpose"`
	Docs      string          `yaml:"docs"`
	Registry  PackageRegistry `yaml:"registry"`
	Companion bool            `yaml:"companion"`
}

// RegistryURL links to the package page on its registry.
func (p KnownPackage) RegistryURL() string {
	switch p.Registry {
	case RegistryNPM:
		return "https://www.npmjs.com/package/" + p.Name
	case RegistryPyPI:
		return "https://pypi.org/project/" + p.Name + "/"
	case RegistryNuGet:
		return "https://www.nuget.org/packages/" + p.Name
	case RegistryMaven:
		return "https://search.maven.org/artifact/" + strings.Replace(p.Name, ":", "/", 1)
	case RegistryGo:
		return "https://pkg.go.dev/" + p.Name
	case RegistryCargo:
		return "https://crates.io/crates/" + p.Name
	default:
		return p.Docs
	}
}

// Language is the primary language inferred from a technology stack.
type Language string

const (
	LanguageUnknown    Language = ""
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
)

//go:embed packages.yaml
var packagesYAML []byte

var knownPackages = mustLoadPackages(packagesYAML)

func mustLoadPackages(data []byte) map[string][]KnownPackage {
	var pkgs map[string][]KnownPackage
	if err := yaml.Unmarshal(data, &pkgs); err != nil {
		panic(fmt.Sprintf("policy: invalid packages table: %v", err))
	}
	return pkgs
}

var explicitLanguages = []struct {
	tech string
	lang Language
}{
	{"Python", LanguagePython},
	{"TypeScript", LanguageTypeScript},
	{"JavaScript", LanguageJavaScript},
	{"Java", LanguageJava},
	{"C# / .NET", LanguageCSharp},
	{"Go", LanguageGo},
	{"Rust", LanguageRust},
}

var (
	pythonIndicators  = []string{"Python", "FastAPI", "Django", "Flask", "Starlette"}
	pythonVariantTech = []string{
		"PostgreSQL", "MySQL", "MongoDB", "SQLite", "Supabase",
		"OpenAI", "Anthropic", "Google AI (Gemini)", "Ollama (Local)",
	}
)

// DetectLanguage picks the registry language for a stack: an explicit language
// label wins, then Python frameworks imply Python.
func DetectLanguage(techs []string) Language {
	for _, e := range explicitLanguages {
		if slices.Contains(techs, e.tech) {
			return e.lang
		}
	}
	for _, t := range techs {
		if slices.Contains(pythonIndicators, t) {
			return LanguagePython
		}
	}
	return LanguageUnknown
}

// PackagesFor returns the known packages for a technology label. Databases and AI
// providers resolve to their PyPI variant when lang is Python.
func PackagesFor(tech string, lang Language) []KnownPackage {
	if lang == LanguagePython && slices.Contains(pythonVariantTech, tech) {
		if pkgs, ok := knownPackages[tech+"-python"]; ok {
			return slices.Clone(pkgs)
		}
	}
	return slices.Clone(knownPackages[tech])
}
