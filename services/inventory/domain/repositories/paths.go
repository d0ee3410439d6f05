package repositories

import "strings"

// CollectionNurseries is the root collection of the hierarchy.
const CollectionNurseries = "nurseries"

// BedsCollection returns the collection path holding a nursery's beds.
func BedsCollection(nurseryID string) string {
	return CollectionNurseries + "/" + nurseryID + "/beds"
}

// CuttingBatchesCollection returns the collection path holding a bed's batches.
func CuttingBatchesCollection(nurseryID, bedID string) string {
	return BedsCollection(nurseryID) + "/" + bedID + "/cuttingBatches"
}

// IsDescendantCollection reports whether collection sits under the document
// parentCollection/parentID.
func IsDescendantCollection(collection, parentCollection, parentID string) bool {
	return strings.HasPrefix(collection, parentCollection+"/"+parentID+"/")
}
