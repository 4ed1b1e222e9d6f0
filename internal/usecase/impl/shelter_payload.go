package impl

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"refugis/config"
	"refugis/internal/domain/condition"
	"refugis/internal/domain/entity"
	domainerrors "refugis/internal/domain/errors"
)

// Payload field names accepted on proposals.
const (
	fieldName               = "name"
	fieldSurname            = "surname"
	fieldCoord              = "coord"
	fieldAltitude           = "altitude"
	fieldPlaces             = "places"
	fieldType               = "type"
	fieldDescription        = "description"
	fieldRemarks            = "remarks"
	fieldInfoComplementaria = "info_complementaria"
	fieldLinks              = "links"
	fieldRegion             = "region"
	fieldDepartement        = "departement"
	fieldCondition          = "condition"
)

// maxPlaces keeps the int conversion of a JSON number in range.
const maxPlaces = math.MaxInt32

var reservedPayloadFields = map[string]struct{}{
	"id":             {},
	"modified_at":    {},
	"visitors":       {},
	"media_metadata": {},
}

var editablePayloadFields = map[string]struct{}{
	fieldName: {}, fieldSurname: {}, fieldCoord: {}, fieldAltitude: {}, fieldPlaces: {},
	fieldType: {}, fieldDescription: {}, fieldRemarks: {}, fieldInfoComplementaria: {},
	fieldLinks: {}, fieldRegion: {}, fieldDepartement: {}, fieldCondition: {},
}

// payloadRules validates proposal payloads against the shelter schema.
type payloadRules struct {
	bounds       condition.Bounds
	amenities    map[string]struct{}
	maxAmenities int
}

func newPayloadRules(cfg *config.ModerationConfig) payloadRules {
	if cfg == nil {
		cfg = config.DefaultModerationConfig()
	}

	amenities := make(map[string]struct{}, len(cfg.AllowedAmenityKeys))
	for _, key := range cfg.AllowedAmenityKeys {
		amenities[key] = struct{}{}
	}

	return payloadRules{
		bounds:       condition.Bounds{Min: cfg.ConditionMin, Max: cfg.ConditionMax},
		amenities:    amenities,
		maxAmenities: cfg.MaxInfoComplementariaKeys,
	}
}

func invalidRequest(format string, args ...any) error {
	return domainerrors.ErrInvalidRequest.WithDetails(fmt.Sprintf(format, args...))
}

// validate checks a create or update payload without applying it.
func (r payloadRules) validate(action entity.ProposalAction, payload map[string]any) error {
	if len(payload) == 0 {
		return invalidRequest("payload must not be empty")
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, reserved := reservedPayloadFields[key]; reserved {
			return invalidRequest("field %q cannot be set through a proposal", key)
		}
		if _, ok := editablePayloadFields[key]; !ok {
			return invalidRequest("unknown field %q", key)
		}
	}

	if action == entity.ProposalActionCreate {
		if _, ok := payload[fieldName]; !ok {
			return invalidRequest("name is required")
		}
		if _, ok := payload[fieldCoord]; !ok {
			return invalidRequest("coord is required")
		}
	}

	if raw, ok := payload[fieldCondition]; ok {
		if _, err := r.parseCondition(raw); err != nil {
			return err
		}
	}

	if raw, ok := payload[fieldInfoComplementaria]; ok {
		info, err := parseAmenities(raw)
		if err != nil {
			return err
		}
		if r.maxAmenities > 0 && len(info) > r.maxAmenities {
			return invalidRequest("info_complementaria accepts at most %d keys", r.maxAmenities)
		}
		for key := range info {
			if _, allowed := r.amenities[key]; !allowed {
				return invalidRequest("info_complementaria key %q is not allowed", key)
			}
		}
	}

	// Dry-run the remaining fields against a scratch shelter.
	_, err := applyPayload(&entity.Shelter{}, payload)

	return err
}

// parseCondition returns the contributed score or ErrInvalidCondition.
func (r payloadRules) parseCondition(raw any) (float64, error) {
	score, ok := asFloat(raw)
	if !ok || !r.bounds.Validate(score) {
		return 0, domainerrors.ErrInvalidCondition.WithDetails(fmt.Sprintf("got %v", raw))
	}

	return score, nil
}

// shelterChanges records which coordinate-index fields a payload touched.
type shelterChanges struct {
	name    bool
	surname bool
	coord   bool
}

func (c shelterChanges) touched() bool {
	return c.name || c.surname || c.coord
}

// applyPayload writes every payload field except condition onto shelter.
// info_complementaria is merged key by key.
func applyPayload(shelter *entity.Shelter, payload map[string]any) (shelterChanges, error) {
	var changes shelterChanges

	for key, raw := range payload {
		switch key {
		case fieldName:
			name, ok := raw.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return changes, invalidRequest("name must be a non-empty string")
			}
			changes.name = changes.name || shelter.Name != name
			shelter.Name = name
		case fieldSurname:
			surname, err := parseOptionalString(raw, key)
			if err != nil {
				return changes, err
			}
			changes.surname = changes.surname || !equalStringPtr(shelter.Surname, surname)
			shelter.Surname = surname
		case fieldCoord:
			coord, err := parseCoordinate(raw)
			if err != nil {
				return changes, err
			}
			changes.coord = changes.coord || shelter.Coord != coord
			shelter.Coord = coord
		case fieldAltitude:
			altitude, ok := asFloat(raw)
			if !ok {
				return changes, invalidRequest("altitude must be a number")
			}
			shelter.Altitude = &altitude
		case fieldPlaces:
			places, ok := asFloat(raw)
			if !ok || places < 0 || places > maxPlaces || places != math.Trunc(places) {
				return changes, invalidRequest("places must be an integer between 0 and %d", maxPlaces)
			}
			n := int(places)
			shelter.Places = &n
		case fieldType:
			typ, ok := raw.(string)
			if !ok || !entity.ShelterType(typ).IsValid() {
				return changes, invalidRequest("type %v is not a known shelter type", raw)
			}
			shelter.Type = entity.ShelterType(typ)
		case fieldDescription, fieldRemarks, fieldRegion, fieldDepartement:
			text, ok := raw.(string)
			if !ok {
				return changes, invalidRequest("%s must be a string", key)
			}
			setTextField(shelter, key, text)
		case fieldInfoComplementaria:
			info, err := parseAmenities(raw)
			if err != nil {
				return changes, err
			}
			if shelter.InfoComplementaria == nil {
				shelter.InfoComplementaria = make(map[string]bool, len(info))
			}
			for k, v := range info {
				shelter.InfoComplementaria[k] = v
			}
		case fieldLinks:
			links, err := parseLinks(raw)
			if err != nil {
				return changes, err
			}
			shelter.Links = links
		case fieldCondition:
			// handled by the strategies through the condition aggregator
		default:
			return changes, invalidRequest("unknown field %q", key)
		}
	}

	return changes, nil
}

func setTextField(shelter *entity.Shelter, key, text string) {
	switch key {
	case fieldDescription:
		shelter.Description = text
	case fieldRemarks:
		shelter.Remarks = text
	case fieldRegion:
		shelter.Region = text
	case fieldDepartement:
		shelter.Departement = text
	}
}

// shelterNameFromPayload reads the denormalized name of a create proposal.
func shelterNameFromPayload(payload map[string]any) string {
	name, _ := payload[fieldName].(string)

	return name
}

func parseCoordinate(raw any) (entity.Coordinate, error) {
	var coord entity.Coordinate

	switch v := raw.(type) {
	case entity.Coordinate:
		coord = v
	case map[string]any:
		lat, latOK := asFloat(v["lat"])
		long, longOK := asFloat(v["long"])
		if !latOK || !longOK {
			return coord, invalidRequest("coord requires numeric lat and long")
		}
		coord = entity.Coordinate{Lat: lat, Long: long}
	default:
		return coord, invalidRequest("coord must be an object with lat and long")
	}

	if !coord.IsValid() {
		return coord, invalidRequest("coord %v is out of range", coord)
	}

	return coord, nil
}

func parseAmenities(raw any) (map[string]bool, error) {
	switch v := raw.(type) {
	case map[string]bool:
		return v, nil
	case map[string]any:
		out := make(map[string]bool, len(v))
		for key, value := range v {
			b, ok := value.(bool)
			if !ok {
				return nil, invalidRequest("info_complementaria.%s must be a boolean", key)
			}
			out[key] = b
		}

		return out, nil
	default:
		return nil, invalidRequest("info_complementaria must be an object of booleans")
	}
}

func parseLinks(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			link, ok := item.(string)
			if !ok {
				return nil, invalidRequest("links must be a list of strings")
			}
			out = append(out, link)
		}

		return out, nil
	default:
		return nil, invalidRequest("links must be a list of strings")
	}
}

func parseOptionalString(raw any, key string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, invalidRequest("%s must be a string or null", key)
	}

	return &s, nil
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// asFloat accepts every numeric representation produced by JSON and Firestore decoding.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}
