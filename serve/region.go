package serve

// Region selects the AWS region a client is configured for.
type Region interface {
	resolve(env Environment) string
}

type localRegion struct{}

func (localRegion) resolve(env Environment) string { return env.awsRegion() }

// LocalRegion returns the region from AWS_REGION. An empty value leaves the region of the loaded config alone.
func LocalRegion() Region { return localRegion{} }

type fixedRegion string

func (r fixedRegion) resolve(Environment) string { return string(r) }

// FixedRegion returns a region that is always the given one.
func FixedRegion(region string) Region { return fixedRegion(region) }
