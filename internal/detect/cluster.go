package detect

import (
	"log"

	"github.com/umahmood/haversine"

	"github.com/echo-project/crisis-engine/internal/database"
)

// DefaultMaxDistanceKm is the default intra-cluster distance threshold
const DefaultMaxDistanceKm = 1.0

// DistanceKm returns the great-circle distance between two coordinates
// in kilometers.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return km
}

// ClusterByLocation partitions geotagged reports into proximity clusters.
// Reports without coordinates are silently excluded. The grouping is a
// single greedy pass: each unassigned report seeds a new cluster and
// absorbs every remaining unassigned report within maxDistanceKm of the
// seed. Membership is measured against the seed only, so clusters are a
// single-link approximation and are not guaranteed pairwise-connected.
// Every geotagged report lands in exactly one cluster; clusters come out
// in seed-encounter order.
func ClusterByLocation(reports []database.Report, maxDistanceKm float64) [][]database.Report {
	var geoReports []database.Report
	for _, r := range reports {
		if r.HasLocation() {
			geoReports = append(geoReports, r)
		}
	}

	if len(geoReports) == 0 {
		log.Printf("SpatialGrouper: no reports with coordinates")
		return nil
	}

	var clusters [][]database.Report
	assigned := make([]bool, len(geoReports))

	for i := range geoReports {
		if assigned[i] {
			continue
		}
		seed := geoReports[i]
		cluster := []database.Report{seed}
		assigned[i] = true

		for j := i + 1; j < len(geoReports); j++ {
			if assigned[j] {
				continue
			}
			other := geoReports[j]
			if DistanceKm(*seed.Lat, *seed.Lng, *other.Lat, *other.Lng) <= maxDistanceKm {
				cluster = append(cluster, other)
				assigned[j] = true
			}
		}

		clusters = append(clusters, cluster)
	}

	log.Printf("SpatialGrouper: built %d geographic clusters from %d geotagged reports", len(clusters), len(geoReports))
	return clusters
}
