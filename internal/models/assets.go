package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BucketRefKind identifies how a target names its bucket
type BucketRefKind int

const (
	BucketRefUnset BucketRefKind = iota
	BucketRefLiteral
	BucketRefReference
)

// BucketRef is either a literal bucket name or a reference to the logical id
// of a resource provisioned by the deployment stack.
//
// Accepted YAML forms:
//
//	bucket: my-bucket
//	bucket: {Ref: AssetsBucket}
//	bucket: !Ref AssetsBucket
type BucketRef struct {
	Kind BucketRefKind
	Name string // literal bucket name
	Ref  string // logical resource id
	Raw  string // original value when it is neither a string nor a reference
}

// Literal returns a BucketRef naming a concrete bucket
func Literal(name string) BucketRef {
	return BucketRef{Kind: BucketRefLiteral, Name: name}
}

// Reference returns a BucketRef pointing at a stack resource logical id
func Reference(logicalID string) BucketRef {
	return BucketRef{Kind: BucketRefReference, Ref: logicalID}
}

// IsReference reports whether the bucket must be looked up in the stack inventory
func (b BucketRef) IsReference() bool {
	return b.Kind == BucketRefReference
}

// Valid reports whether the value has a supported shape
func (b BucketRef) Valid() bool {
	return b.Kind == BucketRefLiteral || b.Kind == BucketRefReference
}

func (b BucketRef) String() string {
	switch b.Kind {
	case BucketRefLiteral:
		return b.Name
	case BucketRefReference:
		return fmt.Sprintf("{Ref: %s}", b.Ref)
	default:
		if b.Raw == "" {
			return "undefined"
		}
		return b.Raw
	}
}

// UnmarshalYAML records unsupported shapes instead of failing so that the
// caller can report them as an invalid bucket name.
func (b *BucketRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!str":
			*b = Literal(node.Value)
			return nil
		case "!Ref":
			if node.Value != "" {
				*b = Reference(node.Value)
				return nil
			}
		}
	case yaml.MappingNode:
		var v struct {
			Ref string `yaml:"Ref"`
		}
		if err := node.Decode(&v); err == nil && v.Ref != "" && len(node.Content) == 2 {
			*b = Reference(v.Ref)
			return nil
		}
	}

	raw, _ := yaml.Marshal(node)
	*b = BucketRef{Raw: strings.TrimSpace(string(raw))}
	return nil
}

// Globs accepts either a single pattern or a list of patterns
type Globs []string

func (g *Globs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*g = Globs{node.Value}
		return nil
	}

	var patterns []string
	if err := node.Decode(&patterns); err != nil {
		return fmt.Errorf("globs must be a string or a list of strings: %w", err)
	}
	*g = patterns
	return nil
}

// FileGroup is a set of local files sharing upload options
type FileGroup struct {
	Source             string            `yaml:"source"`             // directory the globs are relative to
	Globs              Globs             `yaml:"globs"`              // patterns; a leading "!" excludes
	DefaultContentType string            `yaml:"defaultContentType"` // used when the extension is unknown
	DetectContentType  bool              `yaml:"detectContentType"`  // sniff content before giving up
	Headers            map[string]string `yaml:"headers"`            // PutObject overrides, e.g. CacheControl
}

// AssetTarget is one bucket plus the file groups synced into it
type AssetTarget struct {
	Bucket BucketRef   `yaml:"bucket"`
	Prefix string      `yaml:"prefix"`
	ACL    string      `yaml:"acl"`
	Empty  bool        `yaml:"empty"`
	Files  []FileGroup `yaml:"files"`
}

// ResourceSummary is one entry of the stack resource inventory
type ResourceSummary struct {
	LogicalID  string `json:"logical_id"`
	PhysicalID string `json:"physical_id"`
}

// UploadTask describes a single object upload
type UploadTask struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
	ACL         string
	Headers     map[string]string
}
