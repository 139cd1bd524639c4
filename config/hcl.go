package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/centraunit/ioc/internal/ctxlog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// fileConfig is the top level structure of a registry HCL file:
//
//	registry {
//	  default_lifetime = env.IOC_DEFAULT_LIFETIME
//	  strict           = true
//	}
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
//	lifetime "app.Cache" {
//	  is = "singleton"
//	}
//
// A lifetime label is the contract's reflect.Type string ("app.Cache",
// "*app.Store") or its ioc.QualifiedName ("github.com/acme/app.Cache").
type fileConfig struct {
	Registry  *registryBlock   `hcl:"registry,block"`
	Log       *logBlock        `hcl:"log,block"`
	Lifetimes []*lifetimeBlock `hcl:"lifetime,block"`
}

type registryBlock struct {
	DefaultLifetime *string `hcl:"default_lifetime,optional"`
	Strict          *bool   `hcl:"strict,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type lifetimeBlock struct {
	Contract string `hcl:"contract,label"`
	Is       string `hcl:"is"`
}

// LoadFile reads the given .env files, then decodes the HCL file at path on
// top of Defaults. Expressions in the file can read environment variables
// through the env object.
func LoadFile(ctx context.Context, path string, envFiles ...string) (*Config, error) {
	logger := ctxlog.FromContext(ctx, ctxlog.Discard())
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	logger.Debug("Decoding registry config file.", "path", path)
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, envContext(), &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}

	cfg := Defaults()
	if fc.Registry != nil {
		if fc.Registry.DefaultLifetime != nil {
			cfg.DefaultLifetime = *fc.Registry.DefaultLifetime
		}
		if fc.Registry.Strict != nil {
			cfg.Strict = *fc.Registry.Strict
		}
	}
	if fc.Log != nil {
		if fc.Log.Level != nil {
			cfg.LogLevel = *fc.Log.Level
		}
		if fc.Log.Format != nil {
			cfg.LogFormat = *fc.Log.Format
		}
	}
	for _, lb := range fc.Lifetimes {
		if _, dup := cfg.Lifetimes[lb.Contract]; dup {
			return nil, fmt.Errorf("duplicate lifetime block for %s in %s", lb.Contract, path)
		}
		cfg.Lifetimes[lb.Contract] = lb.Is
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("Successfully decoded registry config file.", "path", path, "lifetimes_found", len(cfg.Lifetimes))
	return cfg, nil
}

// envContext exposes the process environment as the env object.
func envContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
