package tryon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"fitroom/internal/storage"
)

const (
	stubWidth  = 768
	stubHeight = 1024
)

// StubGenerator renders a deterministic placeholder composite without calling
// any external service. The output depends only on the request, so repeated
// runs are byte-identical; the subject photo is embedded when it can be
// loaded and decoded, and skipped otherwise.
type StubGenerator struct {
	store storage.ObjectStore
}

// NewStubGenerator builds the placeholder backend.
func NewStubGenerator(store storage.ObjectStore) *StubGenerator {
	return &StubGenerator{store: store}
}

// Generate renders the placeholder. It never fails except on context
// cancellation.
func (g *StubGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := sha256.Sum256([]byte(req.OwnerID + "|" + req.SubjectRef + "|" + req.JobID))
	base := color.NRGBA{R: 0x60 | seed[0]>>2, G: 0x60 | seed[1]>>2, B: 0x60 | seed[2]>>2, A: 0xFF}
	canvas := imaging.New(stubWidth, stubHeight, base)

	if g.store != nil {
		if data, _, err := g.store.Get(ctx, storage.BucketUploads, req.SubjectRef); err == nil {
			if subject, err := imaging.Decode(bytes.NewReader(data)); err == nil {
				fitted := imaging.Fit(subject, stubWidth, stubHeight, imaging.Lanczos)
				offset := image.Pt((stubWidth-fitted.Bounds().Dx())/2, (stubHeight-fitted.Bounds().Dy())/2)
				canvas = imaging.Paste(canvas, fitted, offset)
			}
		}
	}

	// One accent band per item so the placeholder reflects the input shape.
	bandHeight := stubHeight / 16
	for i := range req.ItemRefs {
		accent := color.NRGBA{
			R: seed[(3+i*3)%len(seed)],
			G: seed[(4+i*3)%len(seed)],
			B: seed[(5+i*3)%len(seed)],
			A: 0xFF,
		}
		band := imaging.New(stubWidth, bandHeight, accent)
		canvas = imaging.Paste(canvas, band, image.Pt(0, stubHeight-(i+1)*2*bandHeight))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, err
	}
	return &Result{Data: buf.Bytes(), MIME: "image/png", Stub: true}, nil
}
