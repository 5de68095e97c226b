package domain

import (
	"log/slog"
	"math"
)

// WGS-84 ellipsoid.
const (
	wgs84A = 6378137.0         // semi-major axis, meters
	wgs84F = 1 / 298.257223563 // flattening
	wgs84B = wgs84A * (1 - wgs84F)
)

// kmPerDegree is the great-circle kilometer equivalent of one degree at the
// mean earth radius of 6371 km.
const kmPerDegree = 2 * math.Pi * 6371.0 / 360.0

// KilometersToDegrees converts an epicentral distance from kilometers to
// degrees of arc.
func KilometersToDegrees(km float64) float64 {
	return km / kmPerDegree
}

// EpicentralDistanceKM returns the great-circle distance in kilometers from
// the origin's epicenter to the station, computed on the WGS-84 ellipsoid.
// Returns ErrNoOrigin when the origin is nil or has no coordinates.
func EpicentralDistanceKM(o *Origin, c Coordinates) (float64, error) {
	if o == nil {
		return 0, ErrNoOrigin
	}
	if o.Latitude == 0 || o.Longitude == 0 {
		return 0, ErrNoOrigin
	}
	return vincentyDistanceM(o.Latitude, o.Longitude, c.Latitude, c.Longitude) / 1e3, nil
}

// HypocentralDistanceKM combines the epicentral distance with the vertical
// separation between hypocenter and sensor. Origin depth is meters positive
// down, station elevation meters positive up; a buried sensor's local depth
// subtracts from the elevation.
//
// Implausibly small depth or elevation magnitudes almost always mean a
// kilometer value slipped in where meters were expected, so they are logged
// as warnings rather than rejected.
func HypocentralDistanceKM(o *Origin, c Coordinates, logger *slog.Logger) (float64, error) {
	epiKM, err := EpicentralDistanceKM(o, c)
	if err != nil {
		return 0, err
	}
	if math.Abs(o.Depth) < 800 {
		logger.Warn("computing hypocentral distance for suspiciously shallow origin, check depth units",
			"depth_m", o.Depth)
	}
	if math.Abs(c.Elevation) < 8 {
		logger.Warn("computing hypocentral distance for suspiciously low station, check elevation units",
			"elevation_m", c.Elevation)
	}
	zKM := (o.Depth + c.Elevation - c.LocalDepth) / 1e3
	return math.Sqrt(epiKM*epiKM + zKM*zKM), nil
}

// vincentyDistanceM computes the geodesic distance in meters between two
// points on the WGS-84 ellipsoid using Vincenty's inverse formula. Falls
// back to spherical great-circle distance for the pathological antipodal
// cases where the iteration fails to converge.
func vincentyDistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	u1 := math.Atan((1 - wgs84F) * math.Tan(phi1))
	u2 := math.Atan((1 - wgs84F) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := dLon
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	for i := 0; i < 200; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0 // coincident points
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			cos2SigmaM = 0 // equatorial line
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		c := wgs84F / 16 * cosSqAlpha * (4 + wgs84F*(4-3*cosSqAlpha))
		lambdaPrev := lambda
		lambda = dLon + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-lambdaPrev) < 1e-12 {
			uSq := cosSqAlpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
			a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := b * sinSigma * (cos2SigmaM + b/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return wgs84B * a * (sigma - deltaSigma)
		}
	}

	// Vincenty fails to converge near antipodal points; the spherical
	// distance is within 0.5% there, good enough for distance weighting.
	return haversineM(phi1, lon1*math.Pi/180, phi2, lon2*math.Pi/180)
}

func haversineM(phi1, lam1, phi2, lam2 float64) float64 {
	sinDphi := math.Sin((phi2 - phi1) / 2)
	sinDlam := math.Sin((lam2 - lam1) / 2)
	h := sinDphi*sinDphi + math.Cos(phi1)*math.Cos(phi2)*sinDlam*sinDlam
	return 2 * 6371000.0 * math.Asin(math.Sqrt(h))
}
