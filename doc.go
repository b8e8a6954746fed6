/*
Package mnemo generates mnemonics: sentences whose words follow a positional
constraint, such as spelling a target string with their first letters, while
staying faithful to a Markov chain learned from a text corpus.

# Concept

A corpus is tokenized and counted into an unconstrained chain (the base model).
For each constraint the engine copies the chain once per position, prunes tokens
that cannot appear there, enforces arc-consistency between neighbouring layers and
renormalizes the surviving edges. Sampling the result is equivalent to sampling the
base chain conditioned on the constraint, without enumerating sentences.

Base models are cached by corpus file name and markov order, in memory and
optionally in a file, Redis or SQLite store.

# Usage

	eng, err := mnemo.New("corpus.txt", mnemo.WithOrder(1))
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Load(ctx); err != nil {
		log.Fatal(err)
	}

	res, err := eng.Generate(ctx, domain.ParseConstraint("t w d"), 3)
	if errors.Is(err, domain.ErrInfeasible) {
		log.Printf("no sentence fits; layer sizes %v", res.LayerSizes)
	}
	for _, s := range res.Sentences {
		fmt.Println(s.Text, s.Probability)
	}
*/
package mnemo
