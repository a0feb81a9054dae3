package domain

import (
	"context"
	"html/template"
	"strconv"
	"strings"

	"github.com/questx-lab/discord-exporter/internal/entity"
	"github.com/questx-lab/discord-exporter/internal/model"
	"github.com/questx-lab/discord-exporter/internal/repository"
	"github.com/questx-lab/discord-exporter/pkg/errorx"
	"github.com/questx-lab/discord-exporter/pkg/xcontext"
)

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Photo Gallery</title>
<style>
body { margin: 0; background: #202225; color: #dcddde; font-family: sans-serif; }
.gallery { display: flex; flex-wrap: wrap; align-items: flex-start; }
.photo-item figure { margin: 8px; }
.photo-item img { width: 100%; height: auto; display: block; }
.photo-item figcaption { font-size: 12px; padding: 4px 0; }
</style>
</head>
<body>
<div class="gallery">
{{- range .Photos}}
<div class="photo-item" style="width: {{.Size}}">
  <figure>
    <img src="{{.URL}}" alt="" width="{{.WidthAttr}}" height="{{.HeightAttr}}">
    <figcaption>{{.Title}}</figcaption>
  </figure>
</div>
{{- end}}
</div>
<script>
const latestId = {{.LatestID}};
const poll = async () => {
  try {
    const resp = await fetch("/photos/latest-id?latestId=" + encodeURIComponent(latestId ?? ""));
    const data = await resp.json();
    if (data.latestId !== latestId) {
      location.reload();
      return;
    }
  } catch (e) {}
  setTimeout(poll, 1000);
};
poll();
</script>
</body>
</html>
`))

type galleryPhoto struct {
	Title      string
	URL        string
	Size       string
	WidthAttr  string
	HeightAttr string
}

type galleryPage struct {
	Photos   []galleryPhoto
	LatestID any
}

type GalleryDomain interface {
	// RenderPage renders the gallery html with the most recent photos and a
	// client-side poll loop that reloads the page on new uploads.
	RenderPage(ctx context.Context) (string, error)

	// Latest blocks until the photo ledger moves past the id the client has
	// seen, then returns the new latest id.
	Latest(ctx context.Context, req *model.LatestPhotoIDRequest) (*model.LatestPhotoIDResponse, error)
}

type galleryDomain struct {
	photoRepo repository.PhotoRepository
}

func NewGalleryDomain(photoRepo repository.PhotoRepository) *galleryDomain {
	return &galleryDomain{photoRepo: photoRepo}
}

func (d *galleryDomain) RenderPage(ctx context.Context) (string, error) {
	cfg := xcontext.Configs(ctx).Gallery

	page := galleryPage{LatestID: template.JS("null")}
	for _, photo := range d.photoRepo.Latest(ctx, cfg.Limit) {
		page.Photos = append(page.Photos, toGalleryPhoto(photo))
	}

	if latestID, ok := d.photoRepo.LatestID(ctx); ok {
		page.LatestID = latestID
	}

	var b strings.Builder
	if err := galleryTemplate.Execute(&b, page); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot render the gallery page: %v", err)
		return "", errorx.New(errorx.Internal, "Cannot render the gallery page")
	}

	return b.String(), nil
}

func (d *galleryDomain) Latest(
	ctx context.Context, req *model.LatestPhotoIDRequest,
) (*model.LatestPhotoIDResponse, error) {
	latest, err := d.photoRepo.Watch(ctx, req.LatestID)
	if err != nil {
		// The client disconnected while waiting.
		return nil, errorx.New(errorx.Unavailable, "Request cancelled")
	}

	resp := &model.LatestPhotoIDResponse{}
	if latest != "" {
		resp.LatestID = &latest
	}

	return resp, nil
}

// toGalleryPhoto sizes an item by its aspect ratio when both dimensions are
// known, so rows of mixed portrait and landscape photos align.
func toGalleryPhoto(photo entity.Photo) galleryPhoto {
	item := galleryPhoto{
		Title:      photo.Title,
		URL:        photo.URL,
		Size:       "auto",
		WidthAttr:  "auto",
		HeightAttr: "auto",
	}

	if photo.Width > 0 && photo.Height > 0 {
		ratio := float64(photo.Width) / float64(photo.Height) * 100
		item.Size = strconv.FormatFloat(ratio, 'f', -1, 64) + "vh"
		item.WidthAttr = strconv.Itoa(photo.Width)
		item.HeightAttr = strconv.Itoa(photo.Height)
	}

	return item
}
