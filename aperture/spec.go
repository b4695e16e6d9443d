package aperture

import "fmt"

// Spec is the serializable description of an aperture, as it appears in
// config files and request bodies.  Type selects the shape; only the
// parameters of that shape are read.  Angles are radians.
type Spec struct {
	Type string  `json:"type" yaml:"type" koanf:"type"`
	X    float64 `json:"x" yaml:"x" koanf:"x"`
	Y    float64 `json:"y" yaml:"y" koanf:"y"`

	// circle and circle-annulus
	R    float64 `json:"r,omitempty" yaml:"r,omitempty" koanf:"r"`
	RIn  float64 `json:"rin,omitempty" yaml:"rin,omitempty" koanf:"rin"`
	ROut float64 `json:"rout,omitempty" yaml:"rout,omitempty" koanf:"rout"`

	// ellipse and ellipse-annulus
	A    float64 `json:"a,omitempty" yaml:"a,omitempty" koanf:"a"`
	B    float64 `json:"b,omitempty" yaml:"b,omitempty" koanf:"b"`
	AIn  float64 `json:"ain,omitempty" yaml:"ain,omitempty" koanf:"ain"`
	BIn  float64 `json:"bin,omitempty" yaml:"bin,omitempty" koanf:"bin"`
	AOut float64 `json:"aout,omitempty" yaml:"aout,omitempty" koanf:"aout"`
	BOut float64 `json:"bout,omitempty" yaml:"bout,omitempty" koanf:"bout"`

	// rectangle and rectangle-annulus
	W    float64 `json:"w,omitempty" yaml:"w,omitempty" koanf:"w"`
	H    float64 `json:"h,omitempty" yaml:"h,omitempty" koanf:"h"`
	WIn  float64 `json:"win,omitempty" yaml:"win,omitempty" koanf:"win"`
	HIn  float64 `json:"hin,omitempty" yaml:"hin,omitempty" koanf:"hin"`
	WOut float64 `json:"wout,omitempty" yaml:"wout,omitempty" koanf:"wout"`
	HOut float64 `json:"hout,omitempty" yaml:"hout,omitempty" koanf:"hout"`

	Theta float64 `json:"theta,omitempty" yaml:"theta,omitempty" koanf:"theta"`
}

// Build validates the spec and constructs the aperture it describes.
func (s Spec) Build() (Aperture, error) {
	switch s.Type {
	case "circle":
		return NewCircle(s.X, s.Y, s.R)
	case "circle-annulus":
		return NewCircularAnnulus(s.X, s.Y, s.RIn, s.ROut)
	case "ellipse":
		return NewEllipse(s.X, s.Y, s.A, s.B, s.Theta)
	case "ellipse-annulus":
		return NewEllipticalAnnulus(s.X, s.Y, s.AIn, s.BIn, s.AOut, s.BOut, s.Theta)
	case "rectangle":
		return NewRectangle(s.X, s.Y, s.W, s.H, s.Theta)
	case "rectangle-annulus":
		return NewRectangularAnnulus(s.X, s.Y, s.WIn, s.HIn, s.WOut, s.HOut, s.Theta)
	}
	return nil, fmt.Errorf("aperture: unrecognized type %q", s.Type)
}

// BuildAll constructs every spec in order, failing on the first invalid one.
func BuildAll(specs []Spec) ([]Aperture, error) {
	aps := make([]Aperture, len(specs))
	for i, s := range specs {
		ap, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("aperture %d: %w", i, err)
		}
		aps[i] = ap
	}
	return aps, nil
}
