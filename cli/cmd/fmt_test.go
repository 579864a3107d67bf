package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/cfgconv/lang"
)

const testSource = `# service settings
8000 -> base;
begin server
  host := "localhost";
  port := @[base 80 +];
  begin tls
    enabled := "true";
  end;
end;
`

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		path    string
		want    string
		wantErr bool
	}{
		{"default", "", "-", FormatYAML, false},
		{"json_extension", "", "out.json", FormatJSON, false},
		{"toml_extension", "", "out.TOML", FormatTOML, false},
		{"native_extension", "", "out.cfg", FormatNative, false},
		{"conf_extension", "", "app.conf", FormatNative, false},
		{"unknown_extension", "", "out.txt", FormatYAML, false},
		{"explicit_overrides", "json", "out.toml", FormatJSON, false},
		{"explicit_case", "YAML", "", FormatYAML, false},
		{"invalid", "xml", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatFor(tt.format, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("formatFor(%q, %q) error = %v, wantErr %v",
					tt.format, tt.path, err, tt.wantErr)
			}

			if tt.wantErr && !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("formatFor() error = %v, want %v", err, ErrInvalidFormat)
			}

			if got != tt.want {
				t.Errorf("formatFor(%q, %q) = %q, want %q", tt.format, tt.path, got, tt.want)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	src := writeFile(t, "service.cfg", testSource)

	tests := []struct {
		name   string
		format string
		want   []string
	}{
		{
			name: "yaml",
			want: []string{"server:", "  host: localhost", "  port: 8080", "  tls:", "    enabled:"},
		},
		{
			name:   "json",
			format: FormatJSON,
			want:   []string{`"server": {`, `"host": "localhost"`, `"port": 8080`},
		},
		{
			name:   "toml",
			format: FormatTOML,
			want:   []string{"[server]", `host = "localhost"`, "port = 8080", "[server.tls]"},
		},
		{
			name:   "native",
			format: FormatNative,
			want:   []string{"8000 -> base;", "begin server", "  port := 8080;", "  begin tls"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, buf := testContext(t)

			c := Convert{Input: src, Output: "-", Format: tt.format, Indent: 2}
			if err := c.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q in\n%s", w, got)
				}
			}
		})
	}
}

func TestConvertToFile(t *testing.T) {
	ctx, buf := testContext(t)

	src := writeFile(t, "service.cfg", testSource)
	out := filepath.Join(t.TempDir(), "service.json")

	c := Convert{Input: src, Output: out, Indent: 0}
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("stdout = %q, want empty", buf.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"server":{"host":"localhost","port":8080,"tls":{"enabled":"true"}}}` + "\n"
	if got := string(data); got != want {
		t.Errorf("output file = %q, want %q", got, want)
	}
}

func TestConvertErrors(t *testing.T) {
	ctx, _ := testContext(t)

	bad := writeFile(t, "bad.cfg", "begin d\n  k := 1;\n  k := 2;\nend;\n")

	var langErr *lang.Error

	err := (&Convert{Input: bad, Output: "-"}).Run(ctx)
	if !errors.As(err, &langErr) || !errors.Is(err, lang.ErrDuplicateKey) {
		t.Errorf("Run() error = %v, want %v", err, lang.ErrDuplicateKey)
	}

	if langErr != nil && langErr.Line() != 3 {
		t.Errorf("Line() = %d, want 3", langErr.Line())
	}

	err = (&Convert{Input: filepath.Join(t.TempDir(), "missing.cfg"), Output: "-"}).Run(ctx)
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("Run() error = %v, want %v", err, ErrReadSource)
	}

	err = (&Convert{Input: bad, Output: "-", Format: "ini"}).Run(ctx)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Run() error = %v, want %v", err, ErrInvalidFormat)
	}
}

func TestFmt(t *testing.T) {
	src := writeFile(t, "service.cfg", testSource)

	opts := FmtOptions{Indent: 4, Source: src}

	ctx, buf := testContext(t)
	if err := (&Native{Options: opts}).Run(ctx); err != nil {
		t.Fatalf("Native.Run() error = %v", err)
	}

	if got := buf.String(); !strings.Contains(got, "\n    port := 8080;\n") {
		t.Errorf("native output not indented by 4:\n%s", got)
	}

	ctx, buf = testContext(t)
	if err := (&YAML{Options: opts}).Run(ctx); err != nil {
		t.Fatalf("YAML.Run() error = %v", err)
	}

	if got := buf.String(); !strings.Contains(got, "server:\n    host: localhost\n") {
		t.Errorf("yaml output not indented by 4:\n%s", got)
	}

	ctx, buf = testContext(t)
	if err := (&JSON{Options: opts}).Run(ctx); err != nil {
		t.Fatalf("JSON.Run() error = %v", err)
	}

	if got := buf.String(); !strings.HasPrefix(got, "{\n    \"server\"") {
		t.Errorf("json output not indented by 4:\n%s", got)
	}

	ctx, buf = testContext(t)
	if err := (&TOML{Options: opts}).Run(ctx); err != nil {
		t.Fatalf("TOML.Run() error = %v", err)
	}

	if got := buf.String(); !strings.Contains(got, "[server]") {
		t.Errorf("toml output missing table:\n%s", got)
	}
}

func TestFmtNativeRoundTrip(t *testing.T) {
	ctx, buf := testContext(t)

	src := writeFile(t, "service.cfg", testSource)
	if err := (&Native{Options: FmtOptions{Indent: 2, Source: src}}).Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want, err := lang.ParseString(ctx, testSource)
	if err != nil {
		t.Fatal(err)
	}

	got, err := lang.ParseString(ctx, buf.String())
	if err != nil {
		t.Fatalf("formatted output does not parse: %v\n%s", err, buf.String())
	}

	if !got.Equal(want) {
		t.Errorf("round trip changed document:\n%s", buf.String())
	}
}
