package tvil

import "encoding/json"

// flexString accepts a JSON string, number or null. The API is loose about
// scalar types: ids and counters arrive as either bare numbers or strings
// depending on the endpoint.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ---- catalog listing (GET /api/entities) ----

type entitiesEnvelope struct {
	Data  []json.RawMessage `json:"data"`
	Links pageLinks         `json:"links"`
}

type pageLinks struct {
	Next string `json:"next"`
}

type entityRecord struct {
	ID         flexString       `json:"id"`
	Attributes entityAttributes `json:"attributes"`
	Links      recordLinks      `json:"links"`
}

type entityAttributes struct {
	Title       string     `json:"title"`
	Address     string     `json:"address"`
	CityAddress string     `json:"city_address"`
	RoomsTotal  flexString `json:"rooms_total"`
}

type recordLinks struct {
	Public string `json:"public"`
}

// ---- entity detail (GET /api/entities/{id}) ----

type detailEnvelope struct {
	Included []includedItem `json:"included"`
}

type includedItem struct {
	Type       string `json:"type"`
	Attributes struct {
		ObjectID    flexString `json:"object_id"`
		Description string     `json:"description"`
	} `json:"attributes"`
}

// ---- reserve calculation (POST /api/reserves/calculate) ----

type calcEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

type calcRecord struct {
	ID         flexString     `json:"id"`
	Attributes calcAttributes `json:"attributes"`
}

type calcAttributes struct {
	TotalPrice flexString `json:"total_price"`
	RoomsData  roomsData  `json:"rooms_data"`
}

type roomsData struct {
	FreeCount flexString `json:"free_count"`
	Text      string     `json:"text"`
}

type calcRequest struct {
	Data calcRequestData `json:"data"`
	Meta struct{}        `json:"meta"`
}

type calcRequestData struct {
	Type          string            `json:"type"`
	Attributes    calcRequestAttrs  `json:"attributes"`
	Relationships calcRelationships `json:"relationships"`
}

type calcRequestAttrs struct {
	Arrival         string `json:"arrival"`
	Departure       string `json:"departure"`
	Male            int    `json:"male"`
	Female          int    `json:"female"`
	ChildAge        []int  `json:"child_age"`
	Source          string `json:"source"`
	IncludeDisabled int    `json:"isCalculationIncludingDisabledEntities"`
}

type calcRelationships struct {
	Entity struct {
		Data struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"data"`
	} `json:"entity"`
}

func newCalcRequest(hotelID, arrival, departure string) calcRequest {
	var req calcRequest
	req.Data.Type = "reserve_calculator"
	req.Data.Attributes = calcRequestAttrs{
		Arrival:         arrival,
		Departure:       departure,
		Male:            1,
		Female:          0,
		ChildAge:        []int{},
		Source:          "reservation",
		IncludeDisabled: 1,
	}
	req.Data.Relationships.Entity.Data.ID = hotelID
	req.Data.Relationships.Entity.Data.Type = "entities"
	return req
}
