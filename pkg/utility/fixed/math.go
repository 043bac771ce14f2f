package fixed

func Mean(points []Point) Point {
	if len(points) == 0 {
		return Zero
	}
	sum := Zero
	for _, point := range points {
		sum = sum.Add(point)
	}
	return sum.DivInt(len(points))
}

func StdDev(points []Point, mean Point) Point {
	if len(points) <= 1 {
		return Zero
	}
	sum := Zero
	for _, point := range points {
		diff := point.Sub(mean)
		sum = sum.Add(diff.Mul(diff))
	}
	return sum.DivInt(len(points)).Sqrt()
}

func Min(points []Point) Point {
	if len(points) == 0 {
		return Zero
	}
	m := points[0]
	for _, point := range points[1:] {
		if point.Lt(m) {
			m = point
		}
	}
	return m
}

func Max(points []Point) Point {
	if len(points) == 0 {
		return Zero
	}
	m := points[0]
	for _, point := range points[1:] {
		if point.Gt(m) {
			m = point
		}
	}
	return m
}

func Sum(points []Point) Point {
	sum := Zero
	for _, point := range points {
		sum = sum.Add(point)
	}
	return sum
}
