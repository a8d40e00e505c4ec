package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBucketRefUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind BucketRefKind
		wantName string
		wantRef  string
	}{
		{
			name:     "literal",
			input:    "bucket: my-bucket",
			wantKind: BucketRefLiteral,
			wantName: "my-bucket",
		},
		{
			name:     "quoted empty literal",
			input:    `bucket: ""`,
			wantKind: BucketRefLiteral,
			wantName: "",
		},
		{
			name:     "ref mapping",
			input:    "bucket: {Ref: AssetsBucket}",
			wantKind: BucketRefReference,
			wantRef:  "AssetsBucket",
		},
		{
			name:     "ref tag",
			input:    "bucket: !Ref AssetsBucket",
			wantKind: BucketRefReference,
			wantRef:  "AssetsBucket",
		},
		{
			name:     "number is invalid",
			input:    "bucket: 42",
			wantKind: BucketRefUnset,
		},
		{
			name:     "list is invalid",
			input:    "bucket: [a, b]",
			wantKind: BucketRefUnset,
		},
		{
			name:     "mapping without Ref is invalid",
			input:    "bucket: {Name: a}",
			wantKind: BucketRefUnset,
		},
		{
			name:     "null is invalid",
			input:    "bucket: ~",
			wantKind: BucketRefUnset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				Bucket BucketRef `yaml:"bucket"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.wantKind, v.Bucket.Kind)
			assert.Equal(t, tt.wantName, v.Bucket.Name)
			assert.Equal(t, tt.wantRef, v.Bucket.Ref)
			assert.Equal(t, tt.wantKind != BucketRefUnset, v.Bucket.Valid())
		})
	}
}

func TestBucketRefString(t *testing.T) {
	assert.Equal(t, "my-bucket", Literal("my-bucket").String())
	assert.Equal(t, "{Ref: Assets}", Reference("Assets").String())
	assert.Equal(t, "undefined", BucketRef{}.String())
	assert.Equal(t, "42", BucketRef{Raw: "42"}.String())
}

func TestGlobsUnmarshal(t *testing.T) {
	var single struct {
		Globs Globs `yaml:"globs"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(`globs: "*.txt"`), &single))
	assert.Equal(t, Globs{"*.txt"}, single.Globs)

	var many struct {
		Globs Globs `yaml:"globs"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("globs: ['**/*', '!*.map']"), &many))
	assert.Equal(t, Globs{"**/*", "!*.map"}, many.Globs)

	var bad struct {
		Globs Globs `yaml:"globs"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("globs: {a: b}"), &bad))
}
