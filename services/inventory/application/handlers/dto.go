package handlers

import (
	"fmt"
	"time"

	"github.com/ghuser/nurseryinventory/services/inventory/domain"
	"github.com/ghuser/nurseryinventory/services/inventory/domain/models"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"nursery north: not found"`
} // @name ErrorResponse

// LocationBody is the tagged location variant. Kind "empty" (or omitted)
// carries nothing, "manual" requires an address, "gps" requires lat and lng
// and takes an optional address.
type LocationBody struct {
	Kind    string   `json:"kind" validate:"omitempty,oneof=empty manual gps" example:"gps"`
	Address string   `json:"address,omitempty" validate:"max=500" example:"Camino Real 123, Talca"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,latitude" example:"-35.4264"`
	Lng     *float64 `json:"lng,omitempty" validate:"omitempty,longitude" example:"-71.6554"`
} // @name Location

func (b *LocationBody) toModel() (models.Location, error) {
	if b == nil {
		return models.EmptyLocation(), nil
	}
	var (
		loc models.Location
		err error
	)
	switch models.LocationKind(b.Kind) {
	case "", models.LocationEmpty:
		if b.Address != "" || b.Lat != nil || b.Lng != nil {
			err = fmt.Errorf("empty location must not carry an address or coordinates")
		}
		loc = models.EmptyLocation()
	case models.LocationManual:
		loc, err = models.ManualLocation(b.Address)
	case models.LocationGPS:
		if b.Lat == nil || b.Lng == nil {
			err = fmt.Errorf("gps location requires lat and lng")
			break
		}
		loc, err = models.GPSLocation(*b.Lat, *b.Lng, b.Address)
	}
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return loc, nil
}

func locationBody(l models.Location) LocationBody {
	out := LocationBody{Kind: string(l.Kind), Address: l.Address}
	if out.Kind == "" {
		out.Kind = string(models.LocationEmpty)
	}
	if l.Kind == models.LocationGPS {
		lat, lng := l.Lat, l.Lng
		out.Lat, out.Lng = &lat, &lng
	}
	return out
}

// ConfigurationBody holds the per-nursery feature flags.
type ConfigurationBody struct {
	PublicVisible   bool `json:"publicVisible"`
	PublicQREnabled bool `json:"publicQrEnabled"`
} // @name NurseryConfiguration

// AuditResponse carries the creation and modification stamps of a record.
type AuditResponse struct {
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2024-01-15T10:30:00Z"`
	CreatedBy string    `json:"createdBy,omitempty" example:"user-42"`
	UpdatedBy string    `json:"updatedBy,omitempty" example:"user-42"`
}

func auditResponse(a models.Audit) AuditResponse {
	return AuditResponse{CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, CreatedBy: a.CreatedBy, UpdatedBy: a.UpdatedBy}
}

// CreateNurseryRequest is the request body for POST /nurseries.
type CreateNurseryRequest struct {
	ID            string             `json:"id" validate:"required,slug" example:"vivero-norte"`
	Name          string             `json:"name" validate:"required,max=200" example:"Vivero Norte"`
	Description   string             `json:"description,omitempty" validate:"max=2000"`
	Location      *LocationBody      `json:"location,omitempty"`
	Owner         string             `json:"owner,omitempty" validate:"max=200" example:"Ana Pérez"`
	Configuration *ConfigurationBody `json:"configuration,omitempty"`
} // @name CreateNurseryRequest

func (r *CreateNurseryRequest) toInput() (models.NewNurseryInput, error) {
	loc, err := r.Location.toModel()
	if err != nil {
		return models.NewNurseryInput{}, err
	}
	in := models.NewNurseryInput{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Location:    loc,
		Owner:       r.Owner,
	}
	if r.Configuration != nil {
		in.Config = models.NurseryConfig(*r.Configuration)
	}
	return in, nil
}

// PatchNurseryRequest is the request body for PATCH /nurseries/{nurseryID}.
// A location replaces the stored variant as a whole.
type PatchNurseryRequest struct {
	Name          *string            `json:"name,omitempty" validate:"omitempty,min=1,max=200" example:"Vivero Norte"`
	Description   *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location      *LocationBody      `json:"location,omitempty"`
	Owner         *string            `json:"owner,omitempty" validate:"omitempty,max=200"`
	Configuration *ConfigurationBody `json:"configuration,omitempty"`
} // @name PatchNurseryRequest

func (r *PatchNurseryRequest) toPatch() (models.NurseryPatch, error) {
	p := models.NurseryPatch{Name: r.Name, Description: r.Description, Owner: r.Owner}
	if r.Location != nil {
		loc, err := r.Location.toModel()
		if err != nil {
			return models.NurseryPatch{}, err
		}
		p.Location = &loc
	}
	if r.Configuration != nil {
		cfg := models.NurseryConfig(*r.Configuration)
		p.Config = &cfg
	}
	return p, nil
}

// NurseryStatisticsResponse is the derived statistics block of a nursery.
type NurseryStatisticsResponse struct {
	TotalBeds       int `json:"totalBeds" example:"12"`
	OccupiedBeds    int `json:"occupiedBeds" example:"9"`
	FreeBeds        int `json:"freeBeds" example:"3"`
	TotalPlants     int `json:"totalPlants" example:"1450"`
	HistoricalTotal int `json:"historicalTotal" example:"3200"`
} // @name NurseryStatistics

func nurseryStatisticsResponse(s models.NurseryStatistics) NurseryStatisticsResponse {
	return NurseryStatisticsResponse(s)
}

// NurseryResponse is a nursery as returned by the API.
type NurseryResponse struct {
	ID            string                    `json:"id" example:"vivero-norte"`
	Name          string                    `json:"name" example:"Vivero Norte"`
	Description   string                    `json:"description,omitempty"`
	Location      LocationBody              `json:"location"`
	Owner         string                    `json:"owner,omitempty"`
	Configuration ConfigurationBody         `json:"configuration"`
	Statistics    NurseryStatisticsResponse `json:"statistics"`
	AuditResponse
} // @name Nursery

func nurseryResponse(n *models.Nursery) NurseryResponse {
	return NurseryResponse{
		ID:            n.ID,
		Name:          n.Name,
		Description:   n.Description,
		Location:      locationBody(n.Location),
		Owner:         n.Owner,
		Configuration: ConfigurationBody(n.Config),
		Statistics:    nurseryStatisticsResponse(n.Statistics),
		AuditResponse: auditResponse(n.Audit),
	}
}

// CreateBedRequest is the request body for POST /nurseries/{nurseryID}/beds.
type CreateBedRequest struct {
	ID                   string     `json:"id" validate:"required,slug" example:"cama-01"`
	Species              string     `json:"species,omitempty" validate:"max=200" example:"Rosa canina"`
	PlantCount           int        `json:"plantCount" validate:"gte=0" example:"120"`
	Substrate            string     `json:"substrate,omitempty" validate:"max=200" example:"turba"`
	ContainerSize        float64    `json:"containerSize" validate:"gte=0" example:"1.5"`
	ContainerUnit        string     `json:"containerUnit,omitempty" validate:"max=20" example:"L"`
	State                string     `json:"state,omitempty" validate:"omitempty,oneof=active inactive other" example:"active"`
	PlantingDate         *time.Time `json:"plantingDate,omitempty" example:"2024-01-15T00:00:00Z"`
	EstimatedHarvestDate *time.Time `json:"estimatedHarvestDate,omitempty" example:"2024-06-15T00:00:00Z"`
} // @name CreateBedRequest

func (r *CreateBedRequest) toInput() models.NewBedInput {
	return models.NewBedInput{
		ID:                   r.ID,
		Species:              r.Species,
		PlantCount:           r.PlantCount,
		Substrate:            r.Substrate,
		ContainerSize:        r.ContainerSize,
		ContainerUnit:        r.ContainerUnit,
		State:                models.BedState(r.State),
		PlantingDate:         r.PlantingDate,
		EstimatedHarvestDate: r.EstimatedHarvestDate,
	}
}

// PatchBedRequest is the request body for PATCH /nurseries/{nurseryID}/beds/{bedID}.
type PatchBedRequest struct {
	Species              *string    `json:"species,omitempty" validate:"omitempty,max=200"`
	PlantCount           *int       `json:"plantCount,omitempty" validate:"omitempty,gte=0"`
	Substrate            *string    `json:"substrate,omitempty" validate:"omitempty,max=200"`
	ContainerSize        *float64   `json:"containerSize,omitempty" validate:"omitempty,gte=0"`
	ContainerUnit        *string    `json:"containerUnit,omitempty" validate:"omitempty,max=20"`
	State                *string    `json:"state,omitempty" validate:"omitempty,oneof=active inactive other"`
	PlantingDate         *time.Time `json:"plantingDate,omitempty"`
	EstimatedHarvestDate *time.Time `json:"estimatedHarvestDate,omitempty"`
} // @name PatchBedRequest

func (r *PatchBedRequest) toPatch() models.BedPatch {
	p := models.BedPatch{
		Species:              r.Species,
		PlantCount:           r.PlantCount,
		Substrate:            r.Substrate,
		ContainerSize:        r.ContainerSize,
		ContainerUnit:        r.ContainerUnit,
		PlantingDate:         r.PlantingDate,
		EstimatedHarvestDate: r.EstimatedHarvestDate,
	}
	if r.State != nil {
		s := models.BedState(*r.State)
		p.State = &s
	}
	return p
}

// BedStatisticsResponse is the derived statistics block of a bed.
type BedStatisticsResponse struct {
	HistoricalTotal int        `json:"historicalTotal" example:"340"`
	TotalCuts       int        `json:"totalCuts" example:"4"`
	LastCutAt       *time.Time `json:"lastCutAt,omitempty" example:"2024-03-01T00:00:00Z"`
} // @name BedStatistics

// BedResponse is a bed as returned by the API.
type BedResponse struct {
	ID                   string                `json:"id" example:"cama-01"`
	NurseryID            string                `json:"nurseryId" example:"vivero-norte"`
	DisplayName          string                `json:"displayName" example:"Vivero Norte · Rosa canina"`
	Species              string                `json:"species,omitempty"`
	PlantCount           int                   `json:"plantCount"`
	Substrate            string                `json:"substrate,omitempty"`
	ContainerSize        float64               `json:"containerSize"`
	ContainerUnit        string                `json:"containerUnit,omitempty"`
	State                string                `json:"state" example:"active"`
	PlantingDate         *time.Time            `json:"plantingDate,omitempty"`
	EstimatedHarvestDate *time.Time            `json:"estimatedHarvestDate,omitempty"`
	Statistics           BedStatisticsResponse `json:"statistics"`
	AuditResponse
} // @name Bed

func bedResponse(b *models.Bed) BedResponse {
	return BedResponse{
		ID:                   b.ID,
		NurseryID:            b.NurseryID,
		DisplayName:          b.DisplayName,
		Species:              b.Species,
		PlantCount:           b.PlantCount,
		Substrate:            b.Substrate,
		ContainerSize:        b.ContainerSize,
		ContainerUnit:        b.ContainerUnit,
		State:                string(b.State),
		PlantingDate:         b.PlantingDate,
		EstimatedHarvestDate: b.EstimatedHarvestDate,
		Statistics:           BedStatisticsResponse(b.Statistics),
		AuditResponse:        auditResponse(b.Audit),
	}
}

// CreateCuttingBatchRequest is the request body for
// POST /nurseries/{nurseryID}/beds/{bedID}/batches.
type CreateCuttingBatchRequest struct {
	Date        time.Time `json:"date" validate:"required" example:"2024-03-01T00:00:00Z"`
	Quantity    int       `json:"quantity" validate:"required,gt=0" example:"85"`
	Quality     string    `json:"quality,omitempty" validate:"omitempty,oneof=excellent good fair poor" example:"good"`
	Notes       string    `json:"notes,omitempty" validate:"max=2000"`
	Responsible string    `json:"responsible,omitempty" validate:"max=200" example:"Ana Pérez"`
} // @name CreateCuttingBatchRequest

func (r *CreateCuttingBatchRequest) toInput() models.NewCuttingBatchInput {
	return models.NewCuttingBatchInput{
		Date:        r.Date,
		Quantity:    r.Quantity,
		Quality:     models.Quality(r.Quality),
		Notes:       r.Notes,
		Responsible: r.Responsible,
	}
}

// PatchCuttingBatchRequest is the request body for
// PATCH /nurseries/{nurseryID}/beds/{bedID}/batches/{batchID}.
type PatchCuttingBatchRequest struct {
	Date        *time.Time `json:"date,omitempty"`
	Quantity    *int       `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Quality     *string    `json:"quality,omitempty" validate:"omitempty,oneof=excellent good fair poor"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Responsible *string    `json:"responsible,omitempty" validate:"omitempty,max=200"`
} // @name PatchCuttingBatchRequest

func (r *PatchCuttingBatchRequest) toPatch() models.CuttingBatchPatch {
	p := models.CuttingBatchPatch{
		Date:        r.Date,
		Quantity:    r.Quantity,
		Notes:       r.Notes,
		Responsible: r.Responsible,
	}
	if r.Quality != nil {
		q := models.Quality(*r.Quality)
		p.Quality = &q
	}
	return p
}

// CuttingBatchResponse is a cutting batch as returned by the API.
type CuttingBatchResponse struct {
	ID          string    `json:"id" example:"01HQ3Z5K8Y2N4M6P7R9S0T1V2W"`
	NurseryID   string    `json:"nurseryId" example:"vivero-norte"`
	BedID       string    `json:"bedId" example:"cama-01"`
	Date        time.Time `json:"date" example:"2024-03-01T00:00:00Z"`
	Quantity    int       `json:"quantity" example:"85"`
	Quality     string    `json:"quality,omitempty" example:"good"`
	Notes       string    `json:"notes,omitempty"`
	Responsible string    `json:"responsible,omitempty"`
	AuditResponse
} // @name CuttingBatch

func cuttingBatchResponse(b *models.CuttingBatch) CuttingBatchResponse {
	return CuttingBatchResponse{
		ID:            b.ID,
		NurseryID:     b.NurseryID,
		BedID:         b.BedID,
		Date:          b.Date,
		Quantity:      b.Quantity,
		Quality:       string(b.Quality),
		Notes:         b.Notes,
		Responsible:   b.Responsible,
		AuditResponse: auditResponse(b.Audit),
	}
}

// StartRepairRequest is the optional body of POST /repairs. An empty list
// repairs every nursery.
type StartRepairRequest struct {
	NurseryIDs []string `json:"nurseryIds,omitempty" validate:"omitempty,dive,slug" example:"vivero-norte"`
} // @name StartRepairRequest
