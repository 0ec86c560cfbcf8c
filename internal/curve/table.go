package curve

// totalMix was recorded by sweeping the TotalMix output fader over OSC and
// reading back the displayed value. Two samples (-50.6 and -19.7 dB) came back
// with the previous fader position and were replaced by the next step.
var totalMix = []Point{
	{-65.0, 0.0},
	{-63.5, 0.00999998115003109},
	{-62.0, 0.020000021904706955},
	{-60.5, 0.030000003054738045},
	{-59.0, 0.039999984204769135},
	{-57.6, 0.05000002309679985},
	{-56.2, 0.06000000610947609},
	{-54.7, 0.06999998539686203},
	{-53.4, 0.07999996840953827},
	{-52.0, 0.09000000357627869},
	{-50.6, 0.10000000149011612},
	{-49.3, 0.10999996960163116},
	{-48.0, 0.1199999526143074},
	{-46.7, 0.12999999523162842},
	{-45.4, 0.13999997079372406},
	{-44.2, 0.15000000596046448},
	{-42.9, 0.1599999964237213},
	{-41.7, 0.16999997198581696},
	{-40.5, 0.18000000715255737},
	{-39.3, 0.1899999976158142},
	{-38.2, 0.20000003278255463},
	{-37.0, 0.21000002324581146},
	{-35.9, 0.2199999988079071},
	{-34.8, 0.22999997437000275},
	{-33.7, 0.24000002443790436},
	{-32.6, 0.25},
	{-31.6, 0.25999999046325684},
	{-30.6, 0.27000001072883606},
	{-29.5, 0.2800000011920929},
	{-28.6, 0.28999999165534973},
	{-27.6, 0.30000001192092896},
	{-26.6, 0.3099999725818634},
	{-25.7, 0.3199999928474426},
	{-24.8, 0.33000001311302185},
	{-23.9, 0.3400000035762787},
	{-23.0, 0.3499999940395355},
	{-22.1, 0.36000001430511475},
	{-21.3, 0.3700000047683716},
	{-20.5, 0.3799999952316284},
	{-19.7, 0.38999998569488525},
	{-18.9, 0.4000000059604645},
	{-18.1, 0.4099999666213989},
	{-17.4, 0.41999998688697815},
	{-16.7, 0.429999977350235},
	{-16.0, 0.4399999976158142},
	{-15.3, 0.44999998807907104},
	{-14.6, 0.46000000834465027},
	{-14.0, 0.4699999988079071},
	{-13.3, 0.47999998927116394},
	{-12.7, 0.49000000953674316},
	{-12.1, 0.5},
	{-12.0, 0.502},
	{-11.6, 0.5099999904632568},
	{-11.0, 0.5199999213218689},
	{-10.5, 0.5299999713897705},
	{-9.9, 0.5400000214576721},
	{-9.4, 0.550000011920929},
	{-9.0, 0.5600000023841858},
	{-8.5, 0.5699999928474426},
	{-8.1, 0.5799999833106995},
	{-7.6, 0.5899999141693115},
	{-7.2, 0.6000000238418579},
	{-6.9, 0.6100000143051147},
	{-6.5, 0.6200000047683716},
	{-6.1, 0.6299999952316284},
	{-6.0, 0.634},
	{-5.8, 0.6399999260902405},
	{-5.5, 0.6499999165534973},
	{-5.2, 0.6600000262260437},
	{-4.8, 0.6699999570846558},
	{-4.5, 0.6799999475479126},
	{-4.2, 0.6899999380111694},
	{-3.8, 0.6999999284744263},
	{-3.5, 0.7099999189376831},
	{-3.2, 0.7200000286102295},
	{-2.9, 0.7299999594688416},
	{-2.5, 0.7399999499320984},
	{-2.2, 0.7499999403953552},
	{-1.9, 0.7599999308586121},
	{-1.5, 0.7699999213218689},
	{-1.2, 0.7799999117851257},
	{-0.9, 0.7899999618530273},
	{-0.6, 0.7999999523162842},
	{-0.2, 0.809999942779541},
	{0.0, 0.817},
	{0.1, 0.8199999332427979},
	{0.4, 0.8299999237060547},
	{0.7, 0.8399999141693115},
	{1.1, 0.8499999642372131},
	{1.4, 0.85999995470047},
	{1.7, 0.8699999451637268},
	{2.1, 0.8799999356269836},
	{2.4, 0.8899999260902405},
	{2.7, 0.8999999165534973},
	{3.0, 0.909},
	{3.4, 0.9199999570846558},
	{3.7, 0.9299999475479126},
	{4.0, 0.9399999380111694},
	{4.4, 0.9499999284744263},
	{4.7, 0.9599999189376831},
	{5.0, 0.9699999690055847},
	{5.3, 0.9799999594688416},
	{5.7, 0.9899999499320984},
	{6.0, 1.0},
}

// Default returns the TotalMix output fader curve.
func Default() *Curve {
	c, err := New(totalMix)
	if err != nil {
		panic(err)
	}
	return c
}
