// Package classifier provides the probabilistic classifiers trained inside
// each cross-validation fold.
//
// Every implementation satisfies Classifier: Fit on an N×D matrix with
// integer labels in [0,K), then PredictProba returns an M×K matrix whose rows
// are probability distributions. Instances are created through a Factory so
// every fold gets a fresh model with identical hyperparameters and its own
// deterministic seed.
//
// Two models ship here: multinomial logistic regression trained with
// full-batch gradient descent, and a temperature-scaled nearest-centroid
// model that is useful when features are already well separated.
package classifier
