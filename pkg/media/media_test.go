package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []Item
	}{
		{"nil", nil, []Item{}},
		{"nil pointer", (*string)(nil), []Item{}},
		{"empty string", "", []Item{}},
		{"whitespace", "   \t", []Item{}},
		{"single image", "http://a/b.png", []Item{{URL: "http://a/b.png", Kind: KindImage}}},
		{"pointer", strPtr("http://a/b.gif"), []Item{{URL: "http://a/b.gif", Kind: KindImage}}},
		{
			"json array",
			`["http://a/b.mp4","http://a/c.png"]`,
			[]Item{{URL: "http://a/b.mp4", Kind: KindVideo}, {URL: "http://a/c.png", Kind: KindImage}},
		},
		{"empty json array", "[]", []Item{}},
		{"broken json", `["http://a/b.png"`, []Item{{URL: `["http://a/b.png"`, Kind: KindUnknown}}},
		{"json not strings", `[1,2]`, []Item{{URL: `[1,2]`, Kind: KindUnknown}}},
		{
			"string list",
			[]string{"http://a/x.jpeg", "http://a/y"},
			[]Item{{URL: "http://a/x.jpeg", Kind: KindImage}, {URL: "http://a/y", Kind: KindUnknown}},
		},
		{"jsonb list", []any{"http://a/x.webm", 3}, []Item{{URL: "http://a/x.webm", Kind: KindVideo}}},
		{"unsupported type", 42, []Item{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.raw))
		})
	}
}

func TestDecodeIsIdempotentThroughEncode(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"http://a/b.png",
		`["http://a/b.mp4","http://a/c.png"]`,
		`[not json`,
		[]string{"https://cdn/x.mov?sig=a&b=c", "https://cdn/y.svg#frag"},
		"[]",
		"http://a/b\xff.png",
		[]string{"http://a/\xfe\xffc.mp4", "ok.png"},
	}

	for _, in := range inputs {
		first := Decode(in)
		encoded := EncodeURLs(URLs(first))
		assert.Equal(t, first, Decode(encoded), "input %#v", in)
	}
}

func TestDecodeReplacesInvalidUTF8(t *testing.T) {
	items := Decode("http://a/b\xff.png")
	require.Len(t, items, 1)
	assert.Equal(t, "http://a/b\uFFFD.png", items[0].URL)
	assert.Equal(t, KindImage, items[0].Kind)
}

func TestEncode(t *testing.T) {
	_, ok := Encode(nil)
	assert.False(t, ok)
	assert.Nil(t, EncodeURLs([]string{}))

	s, ok := Encode([]Item{{URL: "http://a/b.png", Kind: KindImage}, {URL: "http://a/c?x=1&y=2"}})
	require.True(t, ok)
	assert.Equal(t, `["http://a/b.png","http://a/c?x=1&y=2"]`, s)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindVideo, Classify("http://x/y.MP4?v=2"))
	assert.Equal(t, KindImage, Classify("http://x/y.JpG#top"))
	assert.Equal(t, KindVideo, Classify("https://storage/object/video/abc123"))
	assert.Equal(t, KindImage, Classify("https://storage/video-thumbs/abc.png"))
	assert.Equal(t, KindUnknown, Classify("https://storage/object/abc123"))
	assert.Equal(t, KindUnknown, Classify("http://x/doc.pdf"))
	assert.Equal(t, KindUnknown, Classify(""))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "png", Extension("http://a/b.c/d.PNG?x=1.mp4"))
	assert.Equal(t, "ogv", Extension("clip.ogv#t=10"))
}

func TestValidURLs(t *testing.T) {
	assert.True(t, IsValidURL("https://cdn.example.com/a.png"))
	assert.True(t, IsValidURL("http://localhost:9000/bucket/a.mp4"))
	assert.False(t, IsValidURL("ftp://host/a.png"))
	assert.False(t, IsValidURL("javascript:alert(1)"))
	assert.False(t, IsValidURL("/relative/path.png"))
	assert.False(t, IsValidURL("not a url"))

	assert.Equal(t,
		[]string{"https://a/1.png", "http://b/2.mp4"},
		FilterValid([]string{"https://a/1.png", "data:image/png;base64,xx", "http://b/2.mp4"}),
	)
}

func TestCountKinds(t *testing.T) {
	c := CountKinds([]string{"a.png", "b.jpg", "c.mp4", "d.txt", "e/video/1"})
	assert.Equal(t, Counts{Images: 2, Videos: 2}, c)
	assert.Equal(t, Counts{}, CountKinds(nil))
}

func TestRewrite(t *testing.T) {
	stored := strPtr(`["http://a/1.png","http://a/2.png"]`)

	got := Rewrite(stored, []string{"http://a/1.png"}, []string{"http://a/3.mp4"})
	require.NotNil(t, got)
	assert.Equal(t, []string{"http://a/2.png", "http://a/3.mp4"}, DecodeURLs(got))

	assert.Nil(t, Rewrite(strPtr("http://a/1.png"), []string{"http://a/1.png"}, nil))
	assert.Equal(t, []string{"http://b/x.png"}, DecodeURLs(Rewrite(nil, nil, []string{"http://b/x.png"})))
}
