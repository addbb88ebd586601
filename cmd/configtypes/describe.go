package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	configtypes "github.com/goliatone/go-configtypes"
)

func describeCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "describe",
		Usage:     "Print the resolved descriptor for a type key as YAML",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "also describe every type reachable from KEY",
			},
		},
		Action: withRuntime(func(_ context.Context, cmd *cli.Command, rt *runtime) error {
			key, err := requireKey(cmd)
			if err != nil {
				return err
			}
			mem, err := rt.loadSnapshot()
			if err != nil {
				return err
			}
			views, err := describe(rt.resolver.Session(mem), key, cmd.Bool("recursive"))
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(stdout)
			enc.SetIndent(2)
			if err := enc.Encode(views); err != nil {
				return fmt.Errorf("describe: encode: %w", err)
			}
			return enc.Close()
		}),
	}
}

type typeView struct {
	Key              string      `yaml:"key"`
	Kind             string      `yaml:"kind"`
	Variant          string      `yaml:"variant"`
	Description      string      `yaml:"description,omitempty"`
	GivenName        string      `yaml:"given_name,omitempty"`
	IsSelector       bool        `yaml:"is_selector,omitempty"`
	TypeParamKeys    []string    `yaml:"type_param_keys,omitempty"`
	OfType           string      `yaml:"of_type,omitempty"`
	ScalarTypeKey    string      `yaml:"scalar_type_key,omitempty"`
	NonScalarTypeKey string      `yaml:"non_scalar_type_key,omitempty"`
	Values           []valueView `yaml:"values,omitempty"`
	Fields           []fieldView `yaml:"fields,omitempty"`
	RecursiveTypes   []string    `yaml:"recursive_config_types,omitempty"`
}

type fieldView struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description,omitempty"`
	Type         string  `yaml:"config_type_key"`
	Optional     bool    `yaml:"is_optional"`
	DefaultValue *string `yaml:"default_value,omitempty"`
}

type valueView struct {
	Value       string `yaml:"value"`
	Description string `yaml:"description,omitempty"`
}

// describe renders key, and with recursive every type reachable from it, in
// key order after the root.
func describe(session *configtypes.Session, key string, recursive bool) ([]typeView, error) {
	root, err := session.Resolve(key)
	if err != nil {
		return nil, err
	}
	types := []configtypes.ConfigType{root}
	if recursive {
		nested, err := root.RecursiveConfigTypes()
		if err != nil {
			return nil, err
		}
		for _, typ := range nested {
			if typ.Key() != root.Key() {
				types = append(types, typ)
			}
		}
	}

	views := make([]typeView, 0, len(types))
	for _, typ := range types {
		view, err := viewOf(typ)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func viewOf(typ configtypes.ConfigType) (typeView, error) {
	view := typeView{
		Key:           typ.Key(),
		Kind:          typ.Kind().String(),
		Description:   typ.Description(),
		IsSelector:    typ.IsSelector(),
		TypeParamKeys: typ.TypeParamKeys(),
	}
	nested, err := typ.RecursiveConfigTypes()
	if err != nil {
		return typeView{}, err
	}
	for _, child := range nested {
		view.RecursiveTypes = append(view.RecursiveTypes, child.Key())
	}

	switch t := typ.(type) {
	case *configtypes.RegularConfigType:
		view.Variant = "RegularConfigType"
		view.GivenName = t.GivenName()
	case *configtypes.EnumConfigType:
		view.Variant = "EnumConfigType"
		view.GivenName = t.GivenName()
		for _, value := range t.Values() {
			view.Values = append(view.Values, valueView{Value: value.Value, Description: value.Description})
		}
	case *configtypes.CompositeConfigType:
		view.Variant = "CompositeConfigType"
		for _, field := range t.Fields() {
			fv := fieldView{
				Name:        field.Name(),
				Description: field.Description(),
				Type:        field.ConfigTypeKey(),
				Optional:    field.IsOptional(),
			}
			if value, ok := field.DefaultValue(); ok {
				fv.DefaultValue = &value
			}
			view.Fields = append(view.Fields, fv)
		}
	case *configtypes.ArrayConfigType:
		view.Variant = "ArrayConfigType"
		view.OfType = t.OfTypeKey()
	case *configtypes.NullableConfigType:
		view.Variant = "NullableConfigType"
		view.OfType = t.OfTypeKey()
	case *configtypes.ScalarUnionConfigType:
		view.Variant = "ScalarUnionConfigType"
		view.ScalarTypeKey = t.ScalarTypeKey()
		view.NonScalarTypeKey = t.NonScalarTypeKey()
	}
	return view, nil
}
