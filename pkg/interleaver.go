package calibrator

import (
	"gonum.org/v1/gonum/floats"
)

// RFWaveformLength is the capacity of a merged RF channel, two digitized
// channels worth of samples.
const RFWaveformLength = 2 * MaxSamples

func newRFChannel() CalibratedRFChannel {
	return CalibratedRFChannel{
		Times: make([]float64, RFWaveformLength),
		Volts: make([]float64, RFWaveformLength),
	}
}

// combinedMean is the mean voltage over the valid prefix of every channel.
// Zero when there are no valid samples at all.
func combinedMean(channels ...*CalibratedChannel) float64 {
	sum := 0.0
	count := 0
	for _, ch := range channels {
		n := validLength(ch.NumPoints, ch.Times, ch.Volts)
		sum += floats.Sum(ch.Volts[:n])
		count += n
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// SingleRFChannel copies the valid samples of one digitized channel into an
// RF channel with the mean removed.
func SingleRFChannel(ch *CalibratedChannel) CalibratedRFChannel {
	rf := newRFChannel()
	n := validLength(ch.NumPoints, ch.Times, ch.Volts)
	mean := combinedMean(ch)
	for i := 0; i < n; i++ {
		rf.Times[i] = ch.Times[i]
		rf.Volts[i] = ch.Volts[i] - mean
	}
	rf.NumPoints = n
	return rf
}

// InterleaveRFChannel merges the two digitized channels that sample one
// antenna. With timeOrdered the streams are merged by time, offset being
// added to every time of the second channel; on equal times the second
// channel goes first. Otherwise samples alternate, starting with the second
// channel, and the first channel is shifted by half a sample. If one
// channel runs out, the rest of the other is appended in order; the first
// channel keeps its half sample shift there, even on even positions.
//
// When one of the channels has no valid samples the other one is passed
// through as in SingleRFChannel.
func InterleaveRFChannel(first *CalibratedChannel, second *CalibratedChannel, offset float64, timeOrdered bool) CalibratedRFChannel {
	n1 := validLength(first.NumPoints, first.Times, first.Volts)
	n2 := validLength(second.NumPoints, second.Times, second.Volts)
	if n1 == 0 {
		return SingleRFChannel(second)
	}
	if n2 == 0 {
		return SingleRFChannel(first)
	}

	rf := newRFChannel()
	mean := combinedMean(first, second)
	rf.NumPoints = n1 + n2

	i1, i2 := 0, 0
	for i := 0; i < rf.NumPoints; i++ {
		takeFirst := i2 >= n2
		if i1 < n1 && i2 < n2 {
			if timeOrdered {
				takeFirst = first.Times[i1] < second.Times[i2]+offset
			} else {
				takeFirst = i%2 == 1
			}
		}

		if takeFirst {
			rf.Times[i] = first.Times[i1]
			if !timeOrdered {
				rf.Times[i] += 0.5 * NsPerSample
			}
			rf.Volts[i] = first.Volts[i1] - mean
			i1++
		} else {
			rf.Times[i] = second.Times[i2]
			if timeOrdered {
				rf.Times[i] += offset
			}
			rf.Volts[i] = second.Volts[i2] - mean
			i2++
		}
	}
	return rf
}

// ApplyCableDelay moves the whole RF channel earlier by delay.
func ApplyCableDelay(rf *CalibratedRFChannel, delay float64) {
	for i := 0; i < rf.NumPoints && i < len(rf.Times); i++ {
		rf.Times[i] -= delay
	}
}
