package hlfile

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Entity is one brace-delimited record of the entity lump
type Entity map[string]string

func (e Entity) ClassName() string {
	return e["classname"]
}

type Landmark struct {
	Name     string
	Position Vertex3f // after FixHand and any correction
}

// LandmarkCorrection moves the landmark whose targetname matches by Offset.
// Some shipped maps place one landmark slightly off from its partner.
type LandmarkCorrection struct {
	TargetName string
	Offset     Vertex3f
}

type EntityInfo struct {
	Entities []Entity
	// Landmarks referenced by a level transition of this map, sorted by name
	Landmarks []Landmark
	// Model references ("*N") whose faces must not be drawn
	SuppressedModels []string
	// Lines that could not be parsed
	Warnings int
}

type entityRole int

const (
	roleNone entityRole = iota
	roleLandmark
	roleChangeLevel
	roleSuppress
)

var classRoles = map[string]entityRole{
	"info_landmark":       roleLandmark,
	"trigger_changelevel": roleChangeLevel,
	"trigger_teleport":    roleSuppress,
	"func_pendulum":       roleSuppress,
	"trigger_transition":  roleSuppress,
	"trigger_hurt":        roleSuppress,
	"func_train":          roleSuppress,
	"func_door_rotating":  roleSuppress,
}

type parseState int

const (
	outsideRecord parseState = iota
	insideRecord
)

type entityParser struct {
	state      parseState
	record     Entity
	correction *LandmarkCorrection

	info      *EntityInfo
	landmarks map[string]Vertex3f
	used      map[string]bool
}

// ParseEntities reads the entity lump line by line. correction may be nil.
func ParseEntities(data []byte, correction *LandmarkCorrection) *EntityInfo {
	p := &entityParser{
		correction: correction,
		info:       &EntityInfo{},
		landmarks:  make(map[string]Vertex3f),
		used:       make(map[string]bool),
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), len(data)+1)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.Trim(scanner.Text(), " \t\r\x00")
		if line == "" {
			continue
		}
		p.feed(lineNum, line)
	}
	if p.state == insideRecord {
		logger.Warn().Int("line", lineNum).Msg("Entity lump ends inside a record")
		p.info.Warnings++
	}

	p.publish()
	return p.info
}

func (p *entityParser) feed(lineNum int, line string) {
	switch p.state {
	case outsideRecord:
		if line != "{" {
			logger.Warn().Int("line", lineNum).Str("text", line).Msg("Missing stuff in entity")
			p.info.Warnings++
			return
		}
		p.record = Entity{}
		p.state = insideRecord

	case insideRecord:
		if line == "}" {
			p.closeRecord()
			p.state = outsideRecord
			return
		}
		key, value, ok := parseKeyValue(line)
		if !ok {
			logger.Warn().Int("line", lineNum).Str("text", line).Msg("Malformed entity field")
			p.info.Warnings++
			return
		}
		p.record[key] = value
	}
}

func (p *entityParser) closeRecord() {
	record := p.record
	p.info.Entities = append(p.info.Entities, record)

	role := classRoles[record.ClassName()]
	switch role {
	case roleLandmark:
		var origin Vertex3f
		if _, err := fmt.Sscanf(record["origin"], "%f %f %f", &origin.X, &origin.Y, &origin.Z); err != nil {
			logger.Warn().Str("targetname", record["targetname"]).Str("origin", record["origin"]).Msg("Landmark has no usable origin")
			return
		}
		position := origin.FixHand()
		targetName := record["targetname"]
		if p.correction != nil && p.correction.TargetName == targetName {
			position = position.Add(p.correction.Offset)
		}
		p.landmarks[targetName] = position

	case roleChangeLevel:
		if landmark := record["landmark"]; landmark != "" {
			p.used[landmark] = true
		}
	}

	if role == roleChangeLevel || role == roleSuppress {
		if model := record["model"]; strings.HasPrefix(model, "*") {
			p.info.SuppressedModels = append(p.info.SuppressedModels, model)
		}
	}
}

// Keep only the landmarks that a level transition of this map points at
func (p *entityParser) publish() {
	names := make([]string, 0, len(p.landmarks))
	for name := range p.landmarks {
		if p.used[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		p.info.Landmarks = append(p.info.Landmarks, Landmark{Name: name, Position: p.landmarks[name]})
	}
}

// Split a `"key" "value"` line
func parseKeyValue(line string) (string, string, bool) {
	fields := make([]string, 0, 2)
	rest := line
	for len(fields) < 2 {
		start := strings.IndexByte(rest, '"')
		if start < 0 {
			return "", "", false
		}
		end := strings.IndexByte(rest[start+1:], '"')
		if end < 0 {
			return "", "", false
		}
		fields = append(fields, rest[start+1:start+1+end])
		rest = rest[start+end+2:]
	}
	if strings.TrimSpace(rest) != "" {
		return "", "", false
	}
	return fields[0], fields[1], true
}
