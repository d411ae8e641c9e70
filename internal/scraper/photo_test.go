package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveURL(t *testing.T) {
	base := "https://www.agrofy.com.br"

	tests := []struct {
		href string
		want string
	}{
		{"https://cdn.agrofy.com.br/a.jpg", "https://cdn.agrofy.com.br/a.jpg"},
		{"http://cdn.agrofy.com.br/a.jpg", "http://cdn.agrofy.com.br/a.jpg"},
		{"//cdn.agrofy.com.br/a.jpg", "https://cdn.agrofy.com.br/a.jpg"},
		{"/images/a.jpg", "https://www.agrofy.com.br/images/a.jpg"},
		{"images/a.jpg", "https://www.agrofy.com.br/images/a.jpg"},
		{"  /images/a.jpg ", "https://www.agrofy.com.br/images/a.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveURL(base, tt.href))
		})
	}

	assert.Equal(t, "", ResolveURL("", "/images/a.jpg"), "relative paths need an absolute base")
	assert.Equal(t, "", ResolveURL("not a base", "a.jpg"))
}

func TestExtractURLFromStyle(t *testing.T) {
	assert.Equal(t, "/img/a.jpg", ExtractURLFromStyle(`background-image: url('/img/a.jpg');`))
	assert.Equal(t, "https://x/b.png", ExtractURLFromStyle(`color:red; background-image:url("https://x/b.png")`))
	assert.Equal(t, "/c.jpg", ExtractURLFromStyle(`background-image: url(/c.jpg)`))
	assert.Equal(t, "", ExtractURLFromStyle(`color: red`))
}

func TestPhotoResolverStrategyOrder(t *testing.T) {
	resolver := PhotoResolver{BaseURL: "https://www.agrofy.com.br", Selectors: AgrofyConfig().Photo}

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "primary src",
			html: `<meta property="og:image" content="https://cdn/og.jpg">
				<div class="product-image"><img src="/main.jpg"></div>`,
			want: "https://www.agrofy.com.br/main.jpg",
		},
		{
			name: "primary lazy attribute",
			html: `<div class="main-image"><img data-src="//cdn.agrofy.com.br/lazy.jpg"></div>`,
			want: "https://cdn.agrofy.com.br/lazy.jpg",
		},
		{
			name: "open graph",
			html: `<meta property="og:image" content="https://cdn/og.jpg">
				<div class="product-gallery"><img src="/gallery.jpg"></div>`,
			want: "https://cdn/og.jpg",
		},
		{
			name: "gallery",
			html: `<div class="product-content"><p>text</p><img src="gallery/1.jpg"></div>`,
			want: "https://www.agrofy.com.br/gallery/1.jpg",
		},
		{
			name: "background image",
			html: `<div class="hero" style="background-image: url('/bg.jpg')"></div>`,
			want: "https://www.agrofy.com.br/bg.jpg",
		},
		{
			name: "nothing",
			html: `<p>no images</p>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(mustDoc(t, tt.html)))
		})
	}
}

func TestPhotoResolverSentinel(t *testing.T) {
	resolver := PhotoResolver{
		BaseURL:   "https://www.tratoresecolheitadeiras.com.br",
		Selectors: TratoresEColheitadeirasConfig().Photo,
	}

	withSecondary := mustDoc(t, `
		<div class="vehicle-image"><img src="{6}"></div>
		<img src="{6}">
		<img src="/veiculos/1028839/foto1.jpg">`)
	assert.Equal(t,
		"https://www.tratoresecolheitadeiras.com.br/veiculos/1028839/foto1.jpg",
		resolver.Resolve(withSecondary))

	withoutSecondary := mustDoc(t, `
		<div class="vehicle-image"><img src="{6}"></div>
		<meta property="og:image" content="https://cdn/og.jpg">`)
	assert.Equal(t, "", resolver.Resolve(withoutSecondary), "a rejected placeholder is not replaced by later primary strategies")
}

func TestPhotoResolverTemplateArtifacts(t *testing.T) {
	resolver := PhotoResolver{BaseURL: "https://www.agrofy.com.br", Selectors: AgrofyConfig().Photo}

	for _, candidate := range []string{"{6}", "{12}", "{}", "/img/{{photo}}.jpg"} {
		assert.True(t, resolver.isPlaceholder(candidate), candidate)
	}
	assert.False(t, resolver.isPlaceholder("/img/6.jpg"))
}

func TestPhotoResolverSimilar(t *testing.T) {
	resolver := PhotoResolver{BaseURL: "https://www.agrofy.com.br", Selectors: AgrofyConfig().Photo}

	doc := mustDoc(t, `<div class="related-products">
		<img src="">
		<img src="{3}">
		<img data-src="/similar/2.jpg">
	</div>`)
	assert.Equal(t, "https://www.agrofy.com.br/similar/2.jpg", resolver.Similar(doc))
	assert.Equal(t, "", resolver.Similar(mustDoc(t, `<p></p>`)))
	assert.Equal(t, "", resolver.Similar(nil))
}

func TestPhotoResolverOutputIsAlwaysAbsolute(t *testing.T) {
	pages := []string{
		`<div class="product-image"><img src="relative.jpg"></div>`,
		`<div class="product-image"><img src="javascript:void(0)"></div><meta property="og:image" content="/og.png">`,
		`<div style="background-image: url(data.jpg)"></div>`,
		`<div class="similar-products"><img src="s.jpg"></div>`,
	}

	for _, base := range []string{"https://www.agrofy.com.br", ""} {
		resolver := PhotoResolver{BaseURL: base, Selectors: AgrofyConfig().Photo}
		for _, page := range pages {
			doc := mustDoc(t, page)
			for _, got := range []string{resolver.Resolve(doc), resolver.Similar(doc)} {
				if got == "" {
					continue
				}
				assert.True(t,
					strings.HasPrefix(got, "http://") || strings.HasPrefix(got, "https://"),
					"got %q from %q", got, page)
			}
		}
	}
}
