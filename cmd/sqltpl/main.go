package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	sqltpl "github.com/goliatone/go-sqltpl"
	"github.com/goliatone/go-sqltpl/pkg/filters"
	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/prompt"
	"github.com/goliatone/go-sqltpl/pkg/render/template"
	"github.com/goliatone/go-sqltpl/pkg/render/template/gonja"
	"github.com/goliatone/go-sqltpl/pkg/render/template/pongo"
)

const usage = `usage: sqltpl <command> [flags] <template-file>

commands:
  extract    list template variables with inferred types
  render     render the template against supplied values
  validate   compile-check the template and placeholder syntax
  detect     report Jinja2 and :name placeholder usage
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command, args := os.Args[1], os.Args[2:]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	engineName := fs.String("engine", "gonja", "template engine: gonja or pongo2")
	valuesPath := fs.String("values", "", "YAML or JSON file of variable values")
	rulesPath := fs.String("rules", "", "YAML file of custom inference rules")
	interactive := fs.Bool("interactive", false, "prompt for missing variable values")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read template: %v", err)
	}

	engine, err := buildEngine(*engineName, *rulesPath)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	switch command {
	case "extract":
		printJSON(engine.Analyze(string(source)))

	case "render":
		values, err := loadValues(*valuesPath)
		if err != nil {
			log.Fatalf("Failed to load values: %v", err)
		}
		if *interactive {
			if values, err = promptMissing(engine, string(source), values); err != nil {
				log.Fatalf("Failed to collect values: %v", err)
			}
		}
		out, err := engine.RenderTemplate(string(source), values)
		if err != nil {
			log.Fatalf("Failed to render template: %v", err)
		}
		fmt.Println(out)

	case "validate":
		result := engine.ValidateTemplate(string(source))
		printJSON(result)
		if !result.Valid {
			os.Exit(1)
		}

	case "detect":
		printJSON(engine.DetectPlaceholderTypes(string(source)))

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func buildEngine(engineName, rulesPath string) (*sqltpl.Engine, error) {
	var options []sqltpl.Option

	registry := filters.NewRegistry()
	var renderer template.Renderer
	var err error
	switch engineName {
	case "gonja":
		renderer, err = gonja.New(registry)
	case "pongo2":
		renderer, err = pongo.New(registry)
	default:
		return nil, fmt.Errorf("unknown engine %q", engineName)
	}
	if err != nil {
		return nil, err
	}
	options = append(options, sqltpl.WithFilterRegistry(registry), sqltpl.WithRenderer(renderer))

	if rulesPath != "" {
		rules, err := infer.LoadRulesFile(rulesPath)
		if err != nil {
			return nil, err
		}
		options = append(options, sqltpl.WithInferenceRules(rules...))
	}

	return sqltpl.New(options...)
}

func loadValues(path string) (map[string]any, error) {
	values := map[string]any{}
	if path == "" {
		return values, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(raw, &values)
	} else {
		err = yaml.Unmarshal(raw, &values)
	}
	return values, err
}

func promptMissing(engine *sqltpl.Engine, source string, values map[string]any) (map[string]any, error) {
	var missing []sqltpl.Variable
	for _, v := range engine.ExtractVariables(source) {
		if _, ok := values[v.Name]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return values, nil
	}

	collected, err := prompt.NewCollector(nil).Collect(context.Background(), missing)
	if err != nil {
		return nil, err
	}
	for name, value := range collected {
		values[name] = value
	}
	return values, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(out))
}
