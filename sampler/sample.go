// Package sampler implements the Transaction Sampler of spec.md §4.2,
// grounded on the original implementation's transaction_sampling.py
// (sample_transactions / sample_providers).
package sampler

import (
	"math/rand"

	"github.com/ferencberes/lnroutesim/simtypes"
	"github.com/ferencberes/lnroutesim/snapshot"
)

// Sample draws a workload of count source->target payments of the given
// amount. epsilon in [0,1] controls the fraction of targets biased toward
// merchants (drawn with probability proportional to degree, restricted to
// merchants that actually appear in nodes); the rest are drawn uniformly.
// Loop transactions (source == target) are dropped and the remaining rows
// are re-indexed densely from 0, per spec.md §4.2.
func Sample(nodes []snapshot.Node, amount int64, count int, epsilon float64,
	merchants []string, rng *rand.Rand) []simtypes.Transaction {

	if count == 0 || len(nodes) == 0 {
		return nil
	}

	pubKeys := make([]string, len(nodes))
	for i, n := range nodes {
		pubKeys[i] = n.PubKey
	}

	sources := make([]string, count)
	for i := range sources {
		sources[i] = pubKeys[rng.Intn(len(pubKeys))]
	}

	active := activeMerchants(nodes, merchants)

	nProv := int(epsilon * float64(count))
	if len(active) == 0 {
		// No merchant is present in the node set: fall back to pure
		// uniform target sampling rather than dividing by a zero
		// degree sum, per spec.md §9's guidance to not guess beyond
		// what the source specifies for edge cases it leaves open.
		if nProv > 0 {
			log.Warnf("epsilon=%.2f requested merchant bias but no "+
				"active merchants found; sampling targets uniformly",
				epsilon)
		}
		nProv = 0
	}

	targets := make([]string, 0, count)
	if nProv > 0 {
		targets = append(targets, sampleProviders(active, nProv, rng)...)
	}
	for len(targets) < count {
		targets = append(targets, pubKeys[rng.Intn(len(pubKeys))])
	}
	rng.Shuffle(len(targets), func(i, j int) {
		targets[i], targets[j] = targets[j], targets[i]
	})

	txs := make([]simtypes.Transaction, 0, count)
	nextID := 0
	dropped := 0
	for i := 0; i < count; i++ {
		if sources[i] == targets[i] {
			dropped++
			continue
		}
		txs = append(txs, simtypes.Transaction{
			ID:     nextID,
			Source: sources[i],
			Target: targets[i],
			Amount: amount,
		})
		nextID++
	}

	log.Debugf("sampled %d transactions (%d loop rows dropped)",
		len(txs), dropped)

	return txs
}

// activeMerchants restricts merchants to those present in nodes, carrying
// over their degree.
func activeMerchants(nodes []snapshot.Node, merchants []string) []snapshot.Node {
	if len(merchants) == 0 {
		return nil
	}

	byKey := make(map[string]snapshot.Node, len(nodes))
	for _, n := range nodes {
		byKey[n.PubKey] = n
	}

	active := make([]snapshot.Node, 0, len(merchants))
	for _, m := range merchants {
		if n, ok := byKey[m]; ok {
			active = append(active, n)
		}
	}

	return active
}

// sampleProviders draws n targets from active with replacement, with
// probability proportional to each node's degree.
func sampleProviders(active []snapshot.Node, n int, rng *rand.Rand) []string {
	total := 0
	for _, a := range active {
		total += a.Degree
	}
	if total == 0 {
		// All active merchants have zero degree: degenerate case, fall
		// back to uniform selection among them.
		out := make([]string, n)
		for i := range out {
			out[i] = active[rng.Intn(len(active))].PubKey
		}
		return out
	}

	cumulative := make([]int, len(active))
	running := 0
	for i, a := range active {
		running += a.Degree
		cumulative[i] = running
	}

	out := make([]string, n)
	for i := range out {
		r := rng.Intn(total)
		idx := 0
		for cumulative[idx] <= r {
			idx++
		}
		out[i] = active[idx].PubKey
	}

	return out
}
