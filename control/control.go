// Package control exposes the blob field config and the agent state over
// graphql so a host UI can tune the visuals while they run.
package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/peragwin/agentfx/agent"
	"github.com/peragwin/agentfx/barvis"
	"github.com/peragwin/agentfx/gfx/blobfield"
)

// ConfigHolder owns the live blob field config.
type ConfigHolder interface {
	Config() *blobfield.Config
	UpdateConfig(*blobfield.Config) error
}

// Visualizer is the bar visualizer surface the schema drives.
type Visualizer interface {
	SetState(agent.State)
	State() agent.State
	Frame() []barvis.Bar
}

// Server resolves graphql queries against a renderer and a visualizer.
type Server struct {
	cfg    ConfigHolder
	vis    Visualizer
	schema graphql.Schema
}

// New builds the schema.
func New(cfg ConfigHolder, vis Visualizer) (*Server, error) {
	s := &Server{cfg: cfg, vis: vis}
	if err := s.initGraphql(); err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	return s, nil
}

// Query runs a graphql request.
func (s *Server) Query(query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  query,
		VariableValues: vars,
	})
}

var agentStateEnum = func() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, st := range agent.States {
		values[strings.ToUpper(st.String())] = &graphql.EnumValueConfig{Value: st}
	}
	return graphql.NewEnum(graphql.EnumConfig{
		Name:   "AgentState",
		Values: values,
	})
}()

var barType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Bar",
	Fields: graphql.Fields{
		"index":       &graphql.Field{Type: graphql.Int},
		"amplitude":   &graphql.Field{Type: graphql.Float},
		"highlighted": &graphql.Field{Type: graphql.Boolean},
		"opacity":     &graphql.Field{Type: graphql.Float},
	},
})

func (s *Server) initGraphql() error {
	configType, configMut := s.configType()

	rootQuery := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "RootQuery",
			Fields: graphql.Fields{
				"config": &graphql.Field{
					Type: configType,
					Resolve: func(graphql.ResolveParams) (interface{}, error) {
						return s.cfg.Config(), nil
					},
				},
				"agentState": &graphql.Field{
					Type: agentStateEnum,
					Resolve: func(graphql.ResolveParams) (interface{}, error) {
						return s.vis.State(), nil
					},
				},
				"bars": &graphql.Field{
					Type: graphql.NewList(barType),
					Resolve: func(graphql.ResolveParams) (interface{}, error) {
						return barMaps(s.vis.Frame()), nil
					},
				},
			},
		},
	)
	rootMut := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "RootMut",
			Fields: graphql.Fields{
				"config": configMut,
				"agentState": &graphql.Field{
					Type: agentStateEnum,
					Args: graphql.FieldConfigArgument{
						"state": &graphql.ArgumentConfig{Type: graphql.NewNonNull(agentStateEnum)},
					},
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						st, ok := p.Args["state"].(agent.State)
						if !ok {
							return nil, errors.New("missing arg: state")
						}
						s.vis.SetState(st)
						return s.vis.State(), nil
					},
				},
			},
		},
	)
	schema, err := graphql.NewSchema(
		graphql.SchemaConfig{
			Query:    rootQuery,
			Mutation: rootMut,
		},
	)
	if err != nil {
		return err
	}
	s.schema = schema
	return nil
}

// configType derives the Config object and its partial-update mutation from
// the struct's json tags.
func (s *Server) configType() (*graphql.Object, *graphql.Field) {
	fields := graphql.Fields{}
	inputFields := graphql.InputObjectConfigFieldMap{}

	ref := reflect.TypeOf(blobfield.Config{})
	for tag, i := range newJSONTagFieldMap(ref) {
		if tag == "" || tag == "-" {
			continue
		}
		typ := graphqlType(ref.Field(i).Type)
		fields[tag] = &graphql.Field{Type: typ, Resolve: configResolver(i)}
		inputFields[tag] = &graphql.InputObjectFieldConfig{Type: typ}
	}

	configType := graphql.NewObject(
		graphql.ObjectConfig{
			Name:   "Config",
			Fields: fields,
		})
	inputConfigType := graphql.NewInputObject(
		graphql.InputObjectConfig{
			Name:   "inputConfig",
			Fields: inputFields,
		})
	configMut := &graphql.Field{
		Type: configType,
		Args: graphql.FieldConfigArgument{
			"params": &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputConfigType)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			params, ok := p.Args["params"].(map[string]interface{})
			if !ok {
				return nil, errors.New("missing arg: params")
			}
			cfg, err := mergeConfig(s.cfg.Config(), params)
			if err != nil {
				return nil, err
			}
			if err := s.cfg.UpdateConfig(cfg); err != nil {
				return nil, err
			}
			return s.cfg.Config(), nil
		},
	}
	return configType, configMut
}

// mergeConfig applies a partial update keyed by json tag onto cfg.
func mergeConfig(cfg *blobfield.Config, params map[string]interface{}) (*blobfield.Config, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", blobfield.ErrInvalidConfig, err)
	}
	return cfg, nil
}

var paletteType = reflect.TypeOf(blobfield.Palette{})

func graphqlType(t reflect.Type) graphql.Type {
	if t == paletteType {
		return graphql.NewList(graphql.String)
	}
	switch t.Kind() {
	case reflect.Bool:
		return graphql.Boolean
	case reflect.Float32, reflect.Float64:
		return graphql.Float
	case reflect.String:
		return graphql.String
	case reflect.Int, reflect.Int8, reflect.Int32, reflect.Int64:
		return graphql.Int
	default:
		panic(fmt.Sprint("unsupported type ", t))
	}
}

func configResolver(field int) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		cfg, ok := p.Source.(*blobfield.Config)
		if !ok {
			return nil, fmt.Errorf("unexpected source %T", p.Source)
		}
		v := reflect.ValueOf(cfg).Elem().Field(field).Interface()
		switch v := v.(type) {
		case blobfield.Palette:
			return v.Strings(), nil
		case float32:
			// shortest decimal that round-trips the float32
			return strconv.ParseFloat(strconv.FormatFloat(float64(v), 'g', -1, 32), 64)
		default:
			return v, nil
		}
	}
}

func barMaps(bars []barvis.Bar) []map[string]interface{} {
	out := make([]map[string]interface{}, len(bars))
	for i, b := range bars {
		out[i] = map[string]interface{}{
			"index":       b.Index,
			"amplitude":   b.Amplitude,
			"highlighted": b.Highlighted,
			"opacity":     b.Opacity,
		}
	}
	return out
}

func jsonTag(f *reflect.StructField) string {
	t := f.Tag.Get("json")
	return strings.Split(t, ",")[0]
}

func newJSONTagFieldMap(t reflect.Type) map[string]int {
	m := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		m[jsonTag(&f)] = i
	}
	return m
}
