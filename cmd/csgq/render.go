package main

import (
	"fmt"
	"io"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/model"
	"github.com/chazu/halfspace/pkg/object"
	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fatih/color"
)

type palette struct {
	head *color.Color
	name *color.Color
	in   *color.Color
	out  *color.Color
	err  *color.Color
	warn *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		head: color.New(color.Bold),
		name: color.New(color.FgCyan, color.Bold),
		in:   color.New(color.FgGreen, color.Bold),
		out:  color.New(color.FgRed),
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{p.head, p.name, p.in, p.out, p.err, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func formatVec(v v3.Vec) string {
	return fmt.Sprintf("(%g %g %g)", v.X, v.Y, v.Z)
}

func formatBox(b sdf.Box3) string {
	if aabb.Empty(b) {
		return "empty"
	}
	return "min " + formatVec(b.Min) + " max " + formatVec(b.Max)
}

func objectLabel(p *palette, o *object.Object) string {
	return p.name.Sprintf("%s #%d", o.Name(), o.ID())
}

func renderModel(w io.Writer, p *palette, m *model.Model) {
	fmt.Fprintf(w, "%s %s\n", p.head.Sprint("world"), formatBox(m.World))

	fmt.Fprintln(w, p.head.Sprint("surfaces"))
	for _, k := range m.SurfaceKeys() {
		s, _ := m.Surface(k)
		fmt.Fprintf(w, "  %d  %s\n", k, s)
	}

	fmt.Fprintln(w, p.head.Sprint("objects"))
	for _, o := range m.Objects() {
		d, err := o.Display()
		if err != nil {
			d = p.err.Sprint("<no rule>")
		}
		fmt.Fprintf(w, "  %s  %s\n", objectLabel(p, o), d)
	}
}

func renderValidation(w io.Writer, p *palette, res model.ValidationResult) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "%s %s\n", p.err.Sprint("error:"), findingText(e.Object, e.Message))
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "%s %s\n", p.warn.Sprint("warning:"), findingText(wn.Object, wn.Message))
	}
	if len(res.Errors) == 0 && len(res.Warnings) == 0 {
		fmt.Fprintln(w, p.in.Sprint("ok"))
		return
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", len(res.Errors), len(res.Warnings))
}

func findingText(obj, msg string) string {
	if obj == "" {
		return msg
	}
	return fmt.Sprintf("object %q: %s", obj, msg)
}

func renderClassification(w io.Writer, p *palette, pt v3.Vec, sm surface.SignMap, objs []*object.Object) {
	fmt.Fprintf(w, "%s %s\n", p.head.Sprint("point"), formatVec(pt))
	for _, o := range objs {
		verdict := p.out.Sprint("outside")
		if o.IsValidMap(sm) {
			verdict = p.in.Sprint("inside")
		}
		fmt.Fprintf(w, "  %s  %s\n", objectLabel(p, o), verdict)
	}
}

func renderBoxes(w io.Writer, p *palette, world sdf.Box3, objs []*object.Object) {
	fmt.Fprintf(w, "%s %s\n", p.head.Sprint("world"), formatBox(world))
	for _, o := range objs {
		fmt.Fprintf(w, "  %s  %s\n", objectLabel(p, o), formatBox(o.BoundingBox(world)))
	}
}
