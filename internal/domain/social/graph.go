// Package social содержит примитивы графа напарников: кто с кем уже
// занимается. Граф строится в памяти из пула участников и используется
// коллаборативной рекомендацией и социальной статистикой.
package social

import (
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/participant"
	"github.com/peerstudy-hub/peerstudy-matching/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARTNER GRAPH
// Неориентированный граф: ребро = существующее партнёрство.
// ══════════════════════════════════════════════════════════════════════════════

// PartnerGraph - граф партнёрств между участниками.
type PartnerGraph struct {
	adjacency map[shared.ParticipantID]map[shared.ParticipantID]struct{}
}

// BuildPartnerGraph строит граф из пула участников. Рёбра симметричны:
// партнёрство учитывается в обе стороны независимо от того, у кого из
// участников оно записано.
func BuildPartnerGraph(participants []*participant.Participant) *PartnerGraph {
	g := &PartnerGraph{
		adjacency: make(map[shared.ParticipantID]map[shared.ParticipantID]struct{}, len(participants)),
	}
	for _, p := range participants {
		if p == nil {
			continue
		}
		for _, partner := range p.Partners {
			g.addEdge(p.ID, partner)
		}
	}
	return g
}

// addEdge добавляет симметричное ребро.
func (g *PartnerGraph) addEdge(a, b shared.ParticipantID) {
	if a == b || a.IsEmpty() || b.IsEmpty() {
		return
	}
	if g.adjacency[a] == nil {
		g.adjacency[a] = make(map[shared.ParticipantID]struct{})
	}
	if g.adjacency[b] == nil {
		g.adjacency[b] = make(map[shared.ParticipantID]struct{})
	}
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
}

// Degree возвращает число партнёров участника.
func (g *PartnerGraph) Degree(id shared.ParticipantID) int {
	return len(g.adjacency[id])
}

// AreConnected проверяет, есть ли партнёрство между a и b.
func (g *PartnerGraph) AreConnected(a, b shared.ParticipantID) bool {
	_, ok := g.adjacency[a][b]
	return ok
}

// Partners возвращает партнёров участника.
func (g *PartnerGraph) Partners(id shared.ParticipantID) []shared.ParticipantID {
	neighbors := g.adjacency[id]
	if len(neighbors) == 0 {
		return nil
	}
	result := make([]shared.ParticipantID, 0, len(neighbors))
	for n := range neighbors {
		result = append(result, n)
	}
	return result
}

// MutualPartners возвращает общих партнёров двух участников.
func (g *PartnerGraph) MutualPartners(a, b shared.ParticipantID) []shared.ParticipantID {
	smaller, larger := g.adjacency[a], g.adjacency[b]
	if len(larger) < len(smaller) {
		smaller, larger = larger, smaller
	}
	mutual := make([]shared.ParticipantID, 0)
	for n := range smaller {
		if _, ok := larger[n]; ok {
			mutual = append(mutual, n)
		}
	}
	return mutual
}

// SecondDegree возвращает партнёров партнёров, исключая самого участника
// и его прямых партнёров. Это кандидаты "через одно рукопожатие".
func (g *PartnerGraph) SecondDegree(id shared.ParticipantID) []shared.ParticipantID {
	direct := g.adjacency[id]
	seen := make(map[shared.ParticipantID]struct{})
	result := make([]shared.ParticipantID, 0)
	for partner := range direct {
		for candidate := range g.adjacency[partner] {
			if candidate == id {
				continue
			}
			if _, isDirect := direct[candidate]; isDirect {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			seen[candidate] = struct{}{}
			result = append(result, candidate)
		}
	}
	return result
}
