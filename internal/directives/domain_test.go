package directives

import (
	"reflect"
	"testing"
)

func newTestDomain(t *testing.T) *Domain {
	t.Helper()
	d := NewDomain()
	if err := d.RegisterDirective(Confval()); err != nil {
		t.Fatalf("register confval: %v", err)
	}
	if err := d.RegisterDirective(Event()); err != nil {
		t.Fatalf("register event: %v", err)
	}
	return d
}

func TestRegisterDirectiveDuplicate(t *testing.T) {
	d := newTestDomain(t)
	if err := d.RegisterDirective(Confval()); err == nil {
		t.Error("expected error registering confval twice")
	}
}

func TestRegisterDirectiveInvalid(t *testing.T) {
	d := NewDomain()
	if err := d.RegisterDirective(Directive{Kind: "", Parse: parseConfval}); err == nil {
		t.Error("expected error for empty kind")
	}
	if err := d.RegisterDirective(Directive{Kind: "x"}); err == nil {
		t.Error("expected error for nil parser")
	}
}

func TestAddObjectFirstWins(t *testing.T) {
	d := newTestDomain(t)

	first, ok := d.AddObject("confval", "project_title = 'Docs'", "config.md")
	if !ok {
		t.Fatal("first AddObject should succeed")
	}
	if first.Name != "project_title" || first.Default != "'Docs'" {
		t.Errorf("unexpected object %+v", first)
	}

	second, ok := d.AddObject("confval", "project_title = 'Other'", "more.md")
	if ok {
		t.Error("duplicate AddObject should report ok=false")
	}
	if second.Default != "'Docs'" {
		t.Errorf("duplicate should return the first object, got %+v", second)
	}

	got, found := d.Lookup("confval", "project_title")
	if !found || got.Page != "config.md" {
		t.Errorf("lookup returned %+v found=%v", got, found)
	}
}

func TestAddObjectUnregisteredKind(t *testing.T) {
	d := NewDomain()
	if _, ok := d.AddObject("confval", "x = 1", "p.md"); ok {
		t.Error("AddObject without a registered directive should fail")
	}
}

func TestLookupSeparatesKinds(t *testing.T) {
	d := newTestDomain(t)
	d.AddObject("confval", "reload", "a.md")
	d.AddObject("event", "reload (app)", "b.md")

	cv, ok := d.Lookup("confval", "reload")
	if !ok || cv.Page != "a.md" {
		t.Errorf("confval lookup: %+v ok=%v", cv, ok)
	}
	ev, ok := d.Lookup("event", "reload")
	if !ok || ev.Page != "b.md" {
		t.Errorf("event lookup: %+v ok=%v", ev, ok)
	}
}

func TestObjectsSorted(t *testing.T) {
	d := newTestDomain(t)
	d.AddObject("event", "build-finished (app, err)", "e.md")
	d.AddObject("confval", "site_title = ''", "c.md")
	d.AddObject("confval", "output_dir = '_site'", "c.md")

	objs := d.Objects()
	if len(objs) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(objs))
	}
	wantOrder := []string{"output_dir", "site_title", "build-finished"}
	for i, name := range wantOrder {
		if objs[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, objs[i].Name)
		}
	}
}

func TestAnchorSanitizesName(t *testing.T) {
	d := newTestDomain(t)
	obj, _ := d.AddObject("event", "build/finished (app)", "e.md")
	if obj.Anchor != "event-build-finished" {
		t.Errorf("unexpected anchor %q", obj.Anchor)
	}
}

func TestParseConfval(t *testing.T) {
	tests := []struct {
		sig         string
		name, deflt string
	}{
		{"project_title = 'My Project'", "project_title", "'My Project'"},
		{"port=8080", "port", "8080"},
		{"watch_enabled =", "watch_enabled", ""},
		{"plain_name", "plain_name", ""},
		{"spaced name", "spaced name", ""},
	}
	for _, tt := range tests {
		obj := parseConfval(tt.sig)
		if obj.Name != tt.name || obj.Default != tt.deflt {
			t.Errorf("parseConfval(%q) = %q/%q, want %q/%q",
				tt.sig, obj.Name, obj.Default, tt.name, tt.deflt)
		}
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		sig    string
		name   string
		params []string
	}{
		{"build-finished (app, err)", "build-finished", []string{"app", "err"}},
		{"reload()", "reload", nil},
		{"changed (path, , op)", "changed", []string{"path", "op"}},
		{"bare-name", "bare-name", nil},
		{"spread   out   name", "spreadoutname", nil},
	}
	for _, tt := range tests {
		obj := parseEvent(tt.sig)
		if obj.Name != tt.name {
			t.Errorf("parseEvent(%q) name = %q, want %q", tt.sig, obj.Name, tt.name)
		}
		if !reflect.DeepEqual(obj.Params, tt.params) {
			t.Errorf("parseEvent(%q) params = %v, want %v", tt.sig, obj.Params, tt.params)
		}
	}
}
