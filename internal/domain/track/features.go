package track

import (
	"math"
	"time"
)

// Dimensions is the number of audio descriptors compared between tracks.
const Dimensions = 8

// FeatureNames lists the descriptors in vector order.
var FeatureNames = [Dimensions]string{
	"acousticness",
	"danceability",
	"energy",
	"instrumentalness",
	"liveness",
	"speechiness",
	"valence",
	"loudness",
}

// FeatureVector holds the numeric audio descriptors of a track.
type FeatureVector struct {
	Acousticness     float64
	Danceability     float64
	Energy           float64
	Instrumentalness float64
	Liveness         float64
	Speechiness      float64
	Valence          float64
	Loudness         float64 // dB, typically -60..0
}

// Values returns the vector in FeatureNames order.
func (v FeatureVector) Values() [Dimensions]float64 {
	return [Dimensions]float64{
		v.Acousticness,
		v.Danceability,
		v.Energy,
		v.Instrumentalness,
		v.Liveness,
		v.Speechiness,
		v.Valence,
		v.Loudness,
	}
}

// FeatureVectorFromValues builds a vector from values in FeatureNames order.
func FeatureVectorFromValues(values [Dimensions]float64) FeatureVector {
	return FeatureVector{
		Acousticness:     values[0],
		Danceability:     values[1],
		Energy:           values[2],
		Instrumentalness: values[3],
		Liveness:         values[4],
		Speechiness:      values[5],
		Valence:          values[6],
		Loudness:         values[7],
	}
}

// Distance returns the Euclidean distance between two vectors.
func (v FeatureVector) Distance(other FeatureVector) float64 {
	a, b := v.Values(), other.Values()
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// AudioFeatures is a feature vector plus the catalog metadata returned with it.
// Only the vector takes part in comparisons.
type AudioFeatures struct {
	FeatureVector
	Duration      time.Duration
	Key           int
	Mode          int
	Tempo         float64
	TimeSignature int
	ID            string
	URI           string
	TrackHref     string
	AnalysisURL   string
}
