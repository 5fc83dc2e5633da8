package rewrite

// BuildMavenArgs exports buildMavenArgs for testing.
var BuildMavenArgs = buildMavenArgs //nolint:gochecknoglobals // test export

// FindMavenBinary exports findMavenBinary for testing.
var FindMavenBinary = findMavenBinary //nolint:gochecknoglobals // test export

// WrapperRecipeName exports wrapperRecipeName for testing.
const WrapperRecipeName = wrapperRecipeName

// UpgradeRecipe exports upgradeRecipe for testing.
const UpgradeRecipe = upgradeRecipe
