package mapgen

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/hordetools/spawnedit/internal/analytics"
	"github.com/hordetools/spawnedit/internal/model"
)

// Options controls the rendered document.
type Options struct {
	// Title is the document title.
	Title string
	// WorldSize is the world extent in game coordinates.
	WorldSize int
	// ImageSize is the map image edge length in pixels.
	ImageSize int
	// BackgroundImage is the background file referenced by the page,
	// relative to the output document.
	BackgroundImage string
}

// bandColors maps danger bands 0..4 to marker colors; index 5 is the
// no-data color.
var bandColors = [6]string{
	"#4caf50", "#cddc39", "#ffc107", "#ff7043", "#e53935", "#9e9e9e",
}

type pagePayload struct {
	Title      string
	WorldSize  int
	ImageSize  int
	Background string
	Scale      float64
	ZonesJSON  template.JS
	ColorsJSON template.JS
}

// Render writes the interactive map document for the snapshot.
//
// Precondition: snap must be non-nil; opts.WorldSize and opts.ImageSize must
// be positive.
// Postcondition: Writes a complete HTML document to w or returns a non-nil
// error; the zone payload embeds pixel coordinates via
// (x*scale, imageSize - z*scale).
func Render(w io.Writer, snap *model.Snapshot, danger analytics.Danger, opts Options) error {
	if opts.WorldSize < 1 || opts.ImageSize < 1 {
		return fmt.Errorf("world size %d and image size %d must be positive", opts.WorldSize, opts.ImageSize)
	}
	if opts.Title == "" {
		opts.Title = "Spawn Zone Map"
	}

	zones := Combine(snap, danger)
	zonesJSON, err := json.Marshal(zones)
	if err != nil {
		return fmt.Errorf("encoding zone payload: %w", err)
	}
	colorsJSON, err := json.Marshal(bandColors)
	if err != nil {
		return fmt.Errorf("encoding band colors: %w", err)
	}

	payload := pagePayload{
		Title:      opts.Title,
		WorldSize:  opts.WorldSize,
		ImageSize:  opts.ImageSize,
		Background: opts.BackgroundImage,
		Scale:      float64(opts.ImageSize) / float64(opts.WorldSize),
		ZonesJSON:  template.JS(zonesJSON),
		ColorsJSON: template.JS(colorsJSON),
	}

	if err := pageTemplate.Execute(w, payload); err != nil {
		return fmt.Errorf("rendering map document: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #222; color: #eee; font-family: sans-serif; }
  #viewport { position: relative; overflow: hidden; width: 100vw; height: 100vh; }
  #map { position: absolute; transform-origin: 0 0; }
  #map img { display: block; width: {{.ImageSize}}px; height: {{.ImageSize}}px; }
  .zone { position: absolute; border: 2px solid; box-sizing: border-box; opacity: 0.6; }
  .zone:hover { opacity: 0.95; }
  .marker { position: absolute; width: 10px; height: 10px; border-radius: 50%; margin: -5px 0 0 -5px; }
  #info { position: fixed; top: 8px; right: 8px; max-width: 320px; background: rgba(0,0,0,0.8);
          padding: 10px; border-radius: 4px; font-size: 13px; display: none; white-space: pre-wrap; }
</style>
</head>
<body>
<div id="viewport">
  <div id="map">
    {{if .Background}}<img src="{{.Background}}" alt="map background">{{end}}
  </div>
</div>
<div id="info"></div>
<script>
var zones = {{.ZonesJSON}};
var colors = {{.ColorsJSON}};
var scale = {{.Scale}};
var imageSize = {{.ImageSize}};

function px(x) { return x * scale; }
function pz(z) { return imageSize - z * scale; }
function color(band) { return band < 0 ? colors[5] : colors[band]; }

function describe(z) {
  var lines = [z.id + (z.config_name ? " - " + z.config_name : " (config " + z.config + ")")];
  if (z.comment) { lines.push(z.comment); }
  if (z.danger_band >= 0) { lines.push("danger band " + (z.danger_band + 1) + "/5, mean health " + z.mean_health.toFixed(1)); }
  (z.categories || []).forEach(function(c) {
    lines.push(c.name + " (" + c.weight + "): " + (c.classnames || []).join(", "));
  });
  return lines.join("\n");
}

var map = document.getElementById("map");
var info = document.getElementById("info");
zones.forEach(function(z) {
  var el = document.createElement("div");
  if (z.static) {
    el.className = "marker";
    el.style.left = px(z.x) + "px";
    el.style.top = pz(z.z) + "px";
    el.style.background = color(z.danger_band);
  } else {
    el.className = "zone";
    el.style.left = px(z.rect.x_upperleft) + "px";
    el.style.top = pz(z.rect.z_upperleft) + "px";
    el.style.width = px(z.rect.x_lowerright - z.rect.x_upperleft) + "px";
    el.style.height = (pz(z.rect.z_lowerright) - pz(z.rect.z_upperleft)) + "px";
    el.style.borderColor = color(z.danger_band);
  }
  el.addEventListener("mouseenter", function() { info.textContent = describe(z); info.style.display = "block"; });
  el.addEventListener("mouseleave", function() { info.style.display = "none"; });
  map.appendChild(el);
});

// pan and zoom
var view = { x: 0, y: 0, k: 1 };
var viewport = document.getElementById("viewport");
function apply() { map.style.transform = "translate(" + view.x + "px," + view.y + "px) scale(" + view.k + ")"; }
var dragging = null;
viewport.addEventListener("mousedown", function(e) { dragging = { x: e.clientX - view.x, y: e.clientY - view.y }; });
window.addEventListener("mouseup", function() { dragging = null; });
window.addEventListener("mousemove", function(e) {
  if (!dragging) { return; }
  view.x = e.clientX - dragging.x;
  view.y = e.clientY - dragging.y;
  apply();
});
viewport.addEventListener("wheel", function(e) {
  e.preventDefault();
  var factor = e.deltaY < 0 ? 1.2 : 1 / 1.2;
  var nk = Math.min(8, Math.max(0.1, view.k * factor));
  view.x = e.clientX - (e.clientX - view.x) * (nk / view.k);
  view.y = e.clientY - (e.clientY - view.y) * (nk / view.k);
  view.k = nk;
  apply();
}, { passive: false });
apply();
</script>
</body>
</html>
`))
