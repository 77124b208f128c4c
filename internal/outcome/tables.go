package outcome

// Tier labels, best first.
const (
	ClimateChampion  = "Climate Champion"
	ConsciousCitizen = "Conscious Citizen"
	CasualConsumer   = "Casual Consumer"
	CarbonCreator    = "Carbon Creator"
	CrisisCatalyst   = "Crisis Catalyst"
)

// DefaultIndividual returns the authored tier table for 3, 4 and 6 questions.
func DefaultIndividual() IndividualTable {
	return IndividualTable{
		3: {
			{Min: 3, Max: 4, Label: ClimateChampion, TokenDelta: 5},
			{Min: 5, Max: 7, Label: ConsciousCitizen, TokenDelta: 3},
			{Min: 8, Max: 10, Label: CasualConsumer, TokenDelta: 0},
			{Min: 11, Max: 13, Label: CarbonCreator, TokenDelta: -4},
			{Min: 14, Max: 15, Label: CrisisCatalyst, TokenDelta: -6},
		},
		4: {
			{Min: 4, Max: 7, Label: ClimateChampion, TokenDelta: 5},
			{Min: 8, Max: 11, Label: ConsciousCitizen, TokenDelta: 3},
			{Min: 12, Max: 15, Label: CasualConsumer, TokenDelta: 0},
			{Min: 16, Max: 18, Label: CarbonCreator, TokenDelta: -4},
			{Min: 19, Max: 20, Label: CrisisCatalyst, TokenDelta: -6},
		},
		6: {
			{Min: 6, Max: 10, Label: ClimateChampion, TokenDelta: 5},
			{Min: 11, Max: 16, Label: ConsciousCitizen, TokenDelta: 3},
			{Min: 17, Max: 22, Label: CasualConsumer, TokenDelta: 0},
			{Min: 23, Max: 27, Label: CarbonCreator, TokenDelta: -4},
			{Min: 28, Max: 30, Label: CrisisCatalyst, TokenDelta: -6},
		},
	}
}

// DefaultCollective returns the temperature table for 1 to 6 teams.
// Keys: team count -> questions per round -> steps.
func DefaultCollective() CollectiveTable {
	return CollectiveTable{
		// A single team gets the two-team bands halved, rounded down.
		1: {
			3: steps(3, 4, 7, 10, 13, 15),
			4: steps(4, 5, 9, 13, 17, 20),
			6: steps(6, 8, 14, 20, 26, 30),
		},
		2: {
			3: steps(6, 8, 14, 20, 26, 30),
			4: steps(8, 11, 19, 27, 35, 40),
			6: steps(12, 16, 28, 40, 52, 60),
		},
		3: {
			3: steps(9, 12, 21, 30, 39, 45),
			4: steps(12, 17, 28, 40, 52, 60),
			6: steps(18, 25, 42, 60, 78, 90),
		},
		4: {
			3: steps(12, 17, 28, 40, 52, 60),
			4: steps(16, 23, 38, 53, 69, 80),
			6: steps(24, 33, 56, 80, 104, 120),
		},
		5: {
			3: steps(15, 21, 35, 50, 65, 75),
			4: steps(20, 28, 47, 67, 87, 100),
			6: steps(30, 41, 70, 100, 130, 150),
		},
		// Six teams use the same cut points (10%, 1/3, 7/12, 5/6 of the span).
		6: {
			3: steps(18, 25, 42, 60, 78, 90),
			4: steps(24, 33, 56, 80, 104, 120),
			6: steps(36, 50, 84, 120, 156, 180),
		},
	}
}

// collectiveDeltas are the temperature increments, coolest band first.
var collectiveDeltas = [5]int{0, 1, 2, 3, 5}

// steps expands a lower bound and five upper bounds into contiguous rows.
func steps(lo int, upper ...int) []Step {
	rows := make([]Step, len(upper))
	for i, hi := range upper {
		rows[i] = Step{Min: lo, Max: hi, Delta: collectiveDeltas[i]}
		lo = hi + 1
	}
	return rows
}
