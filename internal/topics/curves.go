package topics

const curveSamples = 100

// param reads a curve parameter with a default.
func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

// builtins returns the seed topics: the two models every prototype of the
// study tool shipped with.
func builtins() []Topic {
	return []Topic{
		{
			Slug:        "two-period-consumer",
			Title:       "Two-Period Consumer Model",
			Description: "Analyzes how consumers allocate consumption between today and the future.",
			Formula:     `C_2 = R_1(1+j_{12}) + R_2 - (1+j_{12})C_1`,
			Theory: "C1 and C2 are first- and second-period consumption, R1 and R2 the " +
				"period incomes, j12 the interest rate. At the consumer optimum the slope " +
				"of the budget line equals the slope of the indifference curve.",
			Curve: budgetLine,
		},
		{
			Slug:        "supply-demand",
			Title:       "Supply and Demand",
			Description: "Shows how the price mechanism balances the two market forces.",
			Formula:     `Q_d = a - bP \\ Q_s = c + dP`,
			Theory: "The demand curve slopes down, the supply curve slopes up; their " +
				"intersection sets the equilibrium price.",
			Curve: supplyDemand,
		},
	}
}

// budgetLine samples the intertemporal budget constraint
// C2 = R1(1+j) + R2 - (1+j)C1 over [0, C1max] and marks the optimum point.
// Parameters: r1 (income 1, 100), r2 (income 2, 80), j (interest, 0.1),
// c1_opt (optimal first-period consumption, 60).
func budgetLine(params map[string]float64) []Series {
	r1 := param(params, "r1", 100)
	r2 := param(params, "r2", 80)
	j := param(params, "j", 0.1)
	c1Opt := param(params, "c1_opt", 60)

	c1Max := r1 + r2/(1+j)
	line := make([]Point, curveSamples)
	for i := range line {
		c1 := c1Max * float64(i) / float64(curveSamples-1)
		line[i] = Point{X: c1, Y: r1*(1+j) + r2 - (1+j)*c1}
	}

	c2Opt := r1*(1+j) + r2 - (1+j)*c1Opt
	return []Series{
		{Name: "budget_line", Points: line},
		{Name: "optimum", Points: []Point{{X: c1Opt, Y: c2Opt}}},
	}
}

// supplyDemand samples linear supply and demand curves around an equilibrium
// price, points as (quantity, price). Parameters: supply_elasticity (1.0),
// demand_elasticity (-1.0), equilibrium_price (10).
func supplyDemand(params map[string]float64) []Series {
	se := param(params, "supply_elasticity", 1.0)
	de := param(params, "demand_elasticity", -1.0)
	pe := param(params, "equilibrium_price", 10)

	demand := make([]Point, curveSamples)
	supply := make([]Point, curveSamples)
	for i := range demand {
		price := 20 * float64(i) / float64(curveSamples-1)
		demand[i] = Point{X: 100 + de*(price-pe)*10, Y: price}
		supply[i] = Point{X: 50 + se*(price-pe)*10, Y: price}
	}

	return []Series{
		{Name: "demand", Points: demand},
		{Name: "supply", Points: supply},
		{Name: "equilibrium", Points: []Point{{X: 75, Y: pe}}},
	}
}
